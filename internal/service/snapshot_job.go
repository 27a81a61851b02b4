package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	cron "github.com/robfig/cron/v3"
)

var (
	ErrJobRunning    = errors.New("snapshot job is already running")
	ErrJobNotRunning = errors.New("snapshot job is not running")
)

// SnapshotJob periodically publishes a new OpenAPI snapshot when the
// synthesized document drifts from the latest one
type SnapshotJob struct {
	catalog  CatalogService
	cron     *cron.Cron
	running  bool
	mu       sync.RWMutex
	config   *SnapshotJobConfig
	last     *SnapshotRun
	stopChan chan struct{}
	doneChan chan struct{}
}

// SnapshotJobConfig contains configuration for the snapshot job
type SnapshotJobConfig struct {
	// CronSchedule defines when to check for drift (default: "0 */15 * * * *" - every 15 minutes)
	CronSchedule string

	// Timeout bounds a single snapshot cycle (default: 30s)
	Timeout time.Duration
}

// SnapshotRun describes the outcome of the most recent cycle
type SnapshotRun struct {
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Published string    `json:"published,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// DefaultSnapshotJobConfig returns a sensible default configuration
func DefaultSnapshotJobConfig() *SnapshotJobConfig {
	return &SnapshotJobConfig{
		CronSchedule: "0 */15 * * * *", // Every 15 minutes (with seconds)
		Timeout:      30 * time.Second,
	}
}

// NewSnapshotJob creates a new snapshot job
func NewSnapshotJob(catalog CatalogService, config *SnapshotJobConfig) *SnapshotJob {
	if config == nil {
		config = DefaultSnapshotJobConfig()
	}

	return &SnapshotJob{
		catalog: catalog,
		cron:    cron.New(cron.WithSeconds()),
		config:  config,
	}
}

// Start schedules the snapshot cycle
func (j *SnapshotJob) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return ErrJobRunning
	}

	scheduler := cron.New(cron.WithSeconds())
	_, err := scheduler.AddFunc(j.config.CronSchedule, func() {
		if _, err := j.RunNow(ctx); err != nil {
			log.Printf("Snapshot cycle failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot job: %w", err)
	}

	j.cron = scheduler
	j.stopChan = make(chan struct{})
	j.doneChan = make(chan struct{})
	j.cron.Start()
	j.running = true
	log.Printf("Snapshot job started with schedule: %s", j.config.CronSchedule)

	go j.monitor(ctx, j.stopChan, j.doneChan)

	return nil
}

// Stop gracefully stops the snapshot job
func (j *SnapshotJob) Stop() error {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return ErrJobNotRunning
	}
	j.running = false
	scheduler, stopChan, doneChan := j.cron, j.stopChan, j.doneChan
	j.mu.Unlock()

	log.Println("Stopping snapshot job...")

	// An in-flight cycle records its run under j.mu, so wait unlocked.
	<-scheduler.Stop().Done()

	close(stopChan)
	<-doneChan

	log.Println("Snapshot job stopped")

	return nil
}

// IsRunning returns whether the job is currently scheduled
func (j *SnapshotJob) IsRunning() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.running
}

// RunNow runs a snapshot cycle immediately. It returns the published
// snapshot version, or an empty string when the document is unchanged.
func (j *SnapshotJob) RunNow(ctx context.Context) (string, error) {
	started := time.Now()
	version, err := j.runCycle(ctx)

	run := &SnapshotRun{
		StartedAt: started,
		Duration:  time.Since(started).String(),
		Published: version,
	}
	if err != nil {
		run.Error = err.Error()
	}

	j.mu.Lock()
	j.last = run
	j.mu.Unlock()

	return version, err
}

func (j *SnapshotJob) runCycle(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	changed, err := j.catalog.DocumentChanged(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to compare document: %w", err)
	}
	if !changed {
		log.Println("OpenAPI document unchanged, no snapshot published")
		return "", nil
	}

	snapshot, err := j.catalog.PublishSnapshot(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to publish snapshot: %w", err)
	}

	log.Printf("Published snapshot %s (version %s)", snapshot.ID, snapshot.Version)
	return snapshot.Version, nil
}

// monitor runs in a separate goroutine to handle graceful shutdown
func (j *SnapshotJob) monitor(ctx context.Context, stopChan <-chan struct{}, doneChan chan<- struct{}) {
	defer close(doneChan)

	select {
	case <-ctx.Done():
		log.Println("Snapshot job context canceled")
	case <-stopChan:
		log.Println("Snapshot job stop signal received")
	}
}

// GetStatus returns the current status of the snapshot job
func (j *SnapshotJob) GetStatus() map[string]any {
	j.mu.RLock()
	defer j.mu.RUnlock()

	status := map[string]any{
		"running":       j.running,
		"cron_schedule": j.config.CronSchedule,
	}

	if j.running {
		status["cron_entries"] = len(j.cron.Entries())
	}
	if j.last != nil {
		status["last_run"] = *j.last
	}

	return status
}
