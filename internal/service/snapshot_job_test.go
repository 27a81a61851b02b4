package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davinci-dev/davinci/internal/database"
	"github.com/davinci-dev/davinci/internal/service"
)

func TestDefaultSnapshotJobConfig(t *testing.T) {
	config := service.DefaultSnapshotJobConfig()
	assert.Equal(t, "0 */15 * * * *", config.CronSchedule)
	assert.Positive(t, config.Timeout)
}

func TestSnapshotJob_RunNow(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemoryDB()
	job := service.NewSnapshotJob(newCatalog(t, db, "customers"), nil)

	version, err := job.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.InitialVersion, version)

	// unchanged document publishes nothing
	version, err = job.RunNow(ctx)
	require.NoError(t, err)
	assert.Empty(t, version)

	// new resources trigger a patch bump
	job = service.NewSnapshotJob(newCatalog(t, db), nil)
	version, err = job.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", version)

	snapshots, _, err := db.List(ctx, nil, "", 10)
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)
}

func TestSnapshotJob_RunNowCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := service.NewSnapshotJob(newCatalog(t, database.NewMemoryDB()), nil)
	_, err := job.RunNow(ctx)
	require.Error(t, err)

	status := job.GetStatus()
	run, ok := status["last_run"].(service.SnapshotRun)
	require.True(t, ok)
	assert.NotEmpty(t, run.Error)
	assert.Empty(t, run.Published)
}

func TestSnapshotJob_StartStop(t *testing.T) {
	config := &service.SnapshotJobConfig{
		CronSchedule: "0 0 * * * *",
		Timeout:      service.DefaultSnapshotJobConfig().Timeout,
	}
	job := service.NewSnapshotJob(newCatalog(t, database.NewMemoryDB()), config)
	ctx := context.Background()

	require.NoError(t, job.Start(ctx))
	assert.True(t, job.IsRunning())
	assert.ErrorIs(t, job.Start(ctx), service.ErrJobRunning)

	status := job.GetStatus()
	assert.Equal(t, true, status["running"])
	assert.Equal(t, config.CronSchedule, status["cron_schedule"])
	assert.Equal(t, 1, status["cron_entries"])

	require.NoError(t, job.Stop())
	assert.False(t, job.IsRunning())
	assert.ErrorIs(t, job.Stop(), service.ErrJobNotRunning)
}

func TestSnapshotJob_InvalidSchedule(t *testing.T) {
	job := service.NewSnapshotJob(newCatalog(t, database.NewMemoryDB()),
		&service.SnapshotJobConfig{CronSchedule: "not a schedule"})

	require.Error(t, job.Start(context.Background()))
	assert.False(t, job.IsRunning())
}

// blockingCatalog holds every drift check until release is closed.
type blockingCatalog struct {
	service.CatalogService
	started   chan struct{}
	startOnce sync.Once
	release   chan struct{}
}

func (c *blockingCatalog) DocumentChanged(context.Context) (bool, error) {
	c.startOnce.Do(func() { close(c.started) })
	<-c.release
	return false, nil
}

func TestSnapshotJob_StopDuringCycle(t *testing.T) {
	catalog := &blockingCatalog{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	job := service.NewSnapshotJob(catalog, &service.SnapshotJobConfig{
		CronSchedule: "* * * * * *",
		Timeout:      10 * time.Second,
	})
	require.NoError(t, job.Start(context.Background()))

	select {
	case <-catalog.started:
	case <-time.After(3 * time.Second):
		t.Fatal("snapshot cycle did not start")
	}

	stopped := make(chan error, 1)
	go func() { stopped <- job.Stop() }()

	// status stays readable while Stop waits for the cycle
	assert.Eventually(t, func() bool { return !job.IsRunning() }, time.Second, 10*time.Millisecond)
	_ = job.GetStatus()

	close(catalog.release)

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return after the cycle finished")
	}

	run, ok := job.GetStatus()["last_run"].(service.SnapshotRun)
	require.True(t, ok)
	assert.Empty(t, run.Error)
	assert.Empty(t, run.Published)
}

func TestSnapshotJob_Restart(t *testing.T) {
	job := service.NewSnapshotJob(newCatalog(t, database.NewMemoryDB()),
		&service.SnapshotJobConfig{CronSchedule: "0 0 * * * *", Timeout: time.Second})
	ctx := context.Background()

	for range 2 {
		require.NoError(t, job.Start(ctx))
		assert.Equal(t, 1, job.GetStatus()["cron_entries"])
		require.NoError(t, job.Stop())
	}
}
