package services

import (
	"context"
	"log"
	"time"

	"medirelay/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// ============================================================
// Scheduled maintenance: reset-token purge + orphan upload sweep
// ============================================================

// OrphanMinAge protects files whose row is still being written
const OrphanMinAge = time.Hour

// CronService runs scheduled maintenance jobs
type CronService struct {
	resets  *repositories.PasswordResetRepository
	docs    *DocumentService
	cron    *cron.Cron
	timeout time.Duration
}

// NewCronService creates a new cron service
func NewCronService(resets *repositories.PasswordResetRepository, docs *DocumentService) *CronService {
	return &CronService{
		resets:  resets,
		docs:    docs,
		cron:    cron.New(),
		timeout: 10 * time.Minute,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.PurgeResetTokens); err != nil {
		return err
	}
	// daily at 03:00
	if _, err := s.cron.AddFunc("0 3 * * *", s.SweepOrphanUploads); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 CronService started")
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CronService stopped")
}

// PurgeResetTokens deletes used or expired password reset tokens
func (s *CronService) PurgeResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.resets.DeleteStale(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Purge reset tokens failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("🧹 Purged %d password reset tokens", n)
	}
}

// SweepOrphanUploads deletes stored files no document row references
func (s *CronService) SweepOrphanUploads() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.docs.SweepOrphans(ctx, OrphanMinAge)
	if err != nil {
		log.Printf("❌ Orphan upload sweep failed: %v", err)
		return
	}
	log.Printf("🧹 Orphan upload sweep removed %d files", n)
}
