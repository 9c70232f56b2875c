package models

import (
	"encoding/json"
	"time"
)

// RateWindow holds one user's request timestamps inside the sliding window,
// serialized as a JSON array of unix milliseconds. Rows past ExpiresAt are
// dead weight until the janitor removes them; the limiter never reads them.
type RateWindow struct {
	UserID     int64     `gorm:"primaryKey" json:"user_id"`
	Timestamps string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt  time.Time `gorm:"index" json:"expires_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (RateWindow) TableName() string {
	return "rate_windows"
}

// Times decodes the stored timestamps. A corrupt payload decodes as empty,
// which errs on the side of letting the request through.
func (w *RateWindow) Times() []time.Time {
	if w.Timestamps == "" {
		return nil
	}

	var millis []int64
	if err := json.Unmarshal([]byte(w.Timestamps), &millis); err != nil {
		return nil
	}

	times := make([]time.Time, 0, len(millis))
	for _, ms := range millis {
		times = append(times, time.UnixMilli(ms))
	}
	return times
}

func (w *RateWindow) SetTimes(times []time.Time) {
	millis := make([]int64, 0, len(times))
	for _, t := range times {
		millis = append(millis, t.UnixMilli())
	}

	data, err := json.Marshal(millis)
	if err != nil {
		data = []byte("[]")
	}
	w.Timestamps = string(data)
}
