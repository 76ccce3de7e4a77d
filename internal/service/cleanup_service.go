package service

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// CleanupService runs the periodic sweep that deletes expired refresh
// sessions, revoked or not. Expired rows are never live, so the sweep is
// safe to run concurrently with every other session operation.
type CleanupService struct {
	sessions *SessionService
	cron     *cron.Cron
}

func NewCleanupService(sessions *SessionService) *CleanupService {
	return &CleanupService{
		sessions: sessions,
		cron:     cron.New(),
	}
}

// Start schedules the sweep with the given cron spec (e.g. "@hourly").
func (s *CleanupService) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (s *CleanupService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *CleanupService) sweep() {
	deleted, err := s.sessions.CleanupExpired(context.Background())
	if err != nil {
		log.Printf("[CLEANUP] failed to delete expired sessions: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[CLEANUP] deleted %d expired refresh sessions", deleted)
	}
}
