package scheduler

import (
	"context"
	"log"
	"time"

	"maildigest-backend/internal/email/usecase"
)

// HydrationScheduler periodically hydrates every configured mailbox.
type HydrationScheduler struct {
	hydrator usecase.HydrationUsecase
	users    []string
	interval time.Duration
	stopChan chan struct{}
}

// NewHydrationScheduler creates a new scheduler
func NewHydrationScheduler(hydrator usecase.HydrationUsecase, users []string, interval time.Duration) *HydrationScheduler {
	return &HydrationScheduler{
		hydrator: hydrator,
		users:    users,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *HydrationScheduler) Start() {
	if len(s.users) == 0 {
		log.Println("[Scheduler] No users configured, hydration scheduler disabled")
		return
	}

	log.Printf("[Scheduler] Starting hydration scheduler for %d users (interval: %s)", len(s.users), s.interval)

	go func() {
		// Run immediately on start
		s.hydrateAll()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.hydrateAll()
			case <-s.stopChan:
				log.Println("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *HydrationScheduler) Stop() {
	close(s.stopChan)
}

func (s *HydrationScheduler) hydrateAll() {
	for _, userID := range s.users {
		threads, err := s.hydrator.HydrateAllThreadsForUser(context.Background(), userID)
		if err != nil {
			log.Printf("[Scheduler] Hydration run failed for user %s: %v", userID, err)
			continue
		}
		log.Printf("[Scheduler] Hydrated %d threads for user %s", len(threads), userID)
	}
}
