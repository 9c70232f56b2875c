package services

import (
	"log"
	"sync"
	"time"

	"alfredoptarigan/resume-match-bot/internal/repositories"
)

// CleanupService physically removes rows already dead to the readers: expired
// sessions (the store treats them as absent from the first stale read),
// spent rate windows, and log entries past the retention period.
type CleanupService interface {
	Start()
	Stop()
}

type cleanupService struct {
	sessionRepo  repositories.SessionRepository
	windowRepo   repositories.RateWindowRepository
	logRepo      repositories.LogRepository
	interval     time.Duration
	sessionTTL   time.Duration
	logRetention time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
}

func NewCleanupService(
	sessionRepo repositories.SessionRepository,
	windowRepo repositories.RateWindowRepository,
	logRepo repositories.LogRepository,
	interval, sessionTTL, logRetention time.Duration,
) CleanupService {
	return &cleanupService{
		sessionRepo:  sessionRepo,
		windowRepo:   windowRepo,
		logRepo:      logRepo,
		interval:     interval,
		sessionTTL:   sessionTTL,
		logRetention: logRetention,
		stopChan:     make(chan struct{}),
	}
}

// Start implements CleanupService.
func (c *cleanupService) Start() {
	log.Printf("🚀 Starting cleanup janitor, interval %s\n", c.interval)

	c.wg.Add(1)
	go c.run()
}

// Stop implements CleanupService.
func (c *cleanupService) Stop() {
	log.Println("🛑 Stopping cleanup janitor...")
	close(c.stopChan)
	c.wg.Wait()
	log.Println("✅ Cleanup janitor stopped")
}

func (c *cleanupService) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *cleanupService) sweep() {
	now := time.Now()

	if n, err := c.sessionRepo.DeleteExpired(now.Add(-c.sessionTTL)); err != nil {
		log.Printf("⚠️  Failed to delete expired sessions: %v\n", err)
	} else if n > 0 {
		log.Printf("🧹 Deleted %d expired sessions\n", n)
	}

	if n, err := c.windowRepo.DeleteExpired(now); err != nil {
		log.Printf("⚠️  Failed to delete expired rate windows: %v\n", err)
	} else if n > 0 {
		log.Printf("🧹 Deleted %d expired rate windows\n", n)
	}

	if n, err := c.logRepo.DeleteOlderThan(now.Add(-c.logRetention)); err != nil {
		log.Printf("⚠️  Failed to delete old log entries: %v\n", err)
	} else if n > 0 {
		log.Printf("🧹 Deleted %d old log entries\n", n)
	}
}
