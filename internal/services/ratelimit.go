package services

import (
	"time"

	"alfredoptarigan/resume-match-bot/internal/models"
	"alfredoptarigan/resume-match-bot/internal/repositories"
)

// rateWindowLength is the sliding window the per-user limit applies to.
const rateWindowLength = 60 * time.Second

// RateLimiterService enforces a per-user sliding-window request cap. Storage
// failures fail open: a broken database must not lock users out of the bot.
type RateLimiterService interface {
	Allow(userID int64) bool
}

type rateLimiterService struct {
	windowRepo repositories.RateWindowRepository
	logService LogService
	limit      int
}

func NewRateLimiterService(windowRepo repositories.RateWindowRepository, logService LogService, requestsPerMinute int) RateLimiterService {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	return &rateLimiterService{
		windowRepo: windowRepo,
		logService: logService,
		limit:      requestsPerMinute,
	}
}

// Allow implements RateLimiterService.
func (r *rateLimiterService) Allow(userID int64) bool {
	window, err := r.windowRepo.Get(userID)
	if err != nil {
		r.logService.Append(models.LevelWarn, "rate_limit_degraded",
			"window read failed, allowing request: "+err.Error(), nil, userID, 0)
		return true
	}

	now := time.Now()
	if window == nil {
		window = &models.RateWindow{UserID: userID}
	}

	var recent []time.Time
	for _, ts := range window.Times() {
		if now.Sub(ts) < rateWindowLength {
			recent = append(recent, ts)
		}
	}

	// A rejected request does not touch the stored counter.
	if len(recent) >= r.limit {
		return false
	}

	recent = append(recent, now)
	window.SetTimes(recent)
	window.ExpiresAt = now.Add(rateWindowLength)

	if err := r.windowRepo.Save(window); err != nil {
		r.logService.Append(models.LevelWarn, "rate_limit_degraded",
			"window write failed, allowing request: "+err.Error(), nil, userID, 0)
	}

	return true
}
