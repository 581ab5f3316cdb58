package marketsync

import (
	"context"
	"fmt"
)

// SyncJob runs SyncAll on the scheduler
type SyncJob struct {
	service *MarketSyncService
}

// NewSyncJob creates a new SyncJob
func NewSyncJob(service *MarketSyncService) *SyncJob {
	return &SyncJob{service: service}
}

// Name returns the job name
func (j *SyncJob) Name() string {
	return "market_sync"
}

// Run syncs every supported instrument
func (j *SyncJob) Run(ctx context.Context) error {
	synced, err := j.service.SyncAll(ctx)
	if err != nil {
		return fmt.Errorf("market sync finished with %d instruments synced: %w", synced, err)
	}
	return nil
}
