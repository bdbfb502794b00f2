package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qualarmap/qualarmap/internal/api/middleware"
	"github.com/qualarmap/qualarmap/internal/measurement"
	"github.com/qualarmap/qualarmap/internal/qualar"
	"github.com/qualarmap/qualarmap/internal/station"
)

// Exporter pulls raw measurements for one station and indicator from the
// Qualar portal.
type Exporter interface {
	Export(ctx context.Context, stationID, indicatorID int, from, to time.Time) ([]measurement.Measurement, error)
}

// IngestJob pulls measurements from the Qualar portal and upserts them into
// the measurement repository. Each station/indicator pair is an independent
// task fanned out across a bounded worker pool.
type IngestJob struct {
	config     IngestConfig
	logger     zerolog.Logger
	exporter   Exporter
	repository measurement.Repository
	registry   *station.Registry

	providerMetrics *middleware.ProviderMetrics
	metrics         *IngestMetrics
}

// IngestMetrics tracks ingestion job statistics.
type IngestMetrics struct {
	mu sync.RWMutex

	TotalRuns       int64
	SuccessfulTasks int64
	FailedTasks     int64
	RowsUpserted    int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// IngestJobConfig holds configuration for creating an IngestJob.
type IngestJobConfig struct {
	Config          IngestConfig
	Logger          zerolog.Logger
	Exporter        Exporter
	Repository      measurement.Repository
	Registry        *station.Registry
	ProviderMetrics *middleware.ProviderMetrics
}

// NewIngestJob creates a new ingestion job processor.
func NewIngestJob(cfg IngestJobConfig) (*IngestJob, error) {
	if cfg.Exporter == nil {
		return nil, fmt.Errorf("worker: exporter is required")
	}
	if cfg.Repository == nil {
		return nil, fmt.Errorf("worker: repository is required")
	}

	config := cfg.Config
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultIngestConfig().Concurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultIngestConfig().Timeout
	}

	registry := cfg.Registry
	if registry == nil {
		registry = station.Default()
	}

	return &IngestJob{
		config:          config,
		logger:          cfg.Logger,
		exporter:        cfg.Exporter,
		repository:      cfg.Repository,
		registry:        registry,
		providerMetrics: cfg.ProviderMetrics,
		metrics:         &IngestMetrics{},
	}, nil
}

// IngestResult contains the result of an ingestion run.
type IngestResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalTasks int
	Successful int
	Failed     int
	Rows       int
	Errors     []IngestError
}

// IngestError represents an error during ingestion.
type IngestError struct {
	Indicator string
	StationID int
	Error     string
}

type ingestTask struct {
	indicator   string
	indicatorID int
	stationID   int
}

type taskResult struct {
	task ingestTask
	rows int
	err  error
}

// Run executes the ingestion job for all configured indicators and stations.
func (j *IngestJob) Run(ctx context.Context) *IngestResult {
	startTime := time.Now()
	from, to := j.config.Window(startTime)

	tasks, err := j.tasks()
	if err != nil {
		return &IngestResult{
			StartTime: startTime,
			EndTime:   time.Now(),
			Failed:    1,
			Errors:    []IngestError{{Error: err.Error()}},
		}
	}

	result := &IngestResult{
		StartTime:  startTime,
		TotalTasks: len(tasks),
	}

	j.logger.Info().
		Int("total_tasks", result.TotalTasks).
		Int("concurrency", j.config.Concurrency).
		Time("from", from).
		Time("to", to).
		Msg("starting qualar ingestion job")

	tasksChan := make(chan ingestTask, len(tasks))
	resultsChan := make(chan taskResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.ingestWorker(ctx, from, to, tasksChan, resultsChan)
		}()
	}

	for _, task := range tasks {
		tasksChan <- task
	}
	close(tasksChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for tr := range resultsChan {
		if tr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, IngestError{
				Indicator: tr.task.indicator,
				StationID: tr.task.stationID,
				Error:     tr.err.Error(),
			})
			continue
		}
		result.Successful++
		result.Rows += tr.rows
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("rows", result.Rows).
		Msg("qualar ingestion job completed")

	return result
}

// tasks expands the configured indicators across every registry station.
func (j *IngestJob) tasks() ([]ingestTask, error) {
	indicators := j.config.Indicators
	if len(indicators) == 0 {
		indicators = j.registry.IndicatorNames()
	}

	stations := j.registry.Stations()
	tasks := make([]ingestTask, 0, len(indicators)*len(stations))
	for _, name := range indicators {
		id, err := j.registry.IndicatorID(name)
		if err != nil {
			return nil, fmt.Errorf("unknown indicator %q", name)
		}
		for _, s := range stations {
			tasks = append(tasks, ingestTask{indicator: name, indicatorID: id, stationID: s.ID})
		}
	}
	return tasks, nil
}

func (j *IngestJob) ingestWorker(ctx context.Context, from, to time.Time, tasks <-chan ingestTask, results chan<- taskResult) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			return
		default:
			rows, err := j.ingestOne(ctx, task, from, to)
			results <- taskResult{task: task, rows: rows, err: err}
		}
	}
}

func (j *IngestJob) ingestOne(ctx context.Context, task ingestTask, from, to time.Time) (int, error) {
	taskCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	start := time.Now()
	measurements, err := j.exporter.Export(taskCtx, task.stationID, task.indicatorID, from, to)
	if j.providerMetrics != nil {
		j.providerMetrics.RecordRequest(qualar.ProviderName, "export", time.Since(start), err)
	}
	if err != nil {
		return 0, fmt.Errorf("export station %d indicator %s: %w", task.stationID, task.indicator, err)
	}
	if len(measurements) == 0 {
		return 0, nil
	}

	if err := j.repository.Upsert(taskCtx, measurements); err != nil {
		return 0, fmt.Errorf("upsert station %d indicator %s: %w", task.stationID, task.indicator, err)
	}

	return len(measurements), nil
}

func (j *IngestJob) updateMetrics(result *IngestResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulTasks += int64(result.Successful)
	j.metrics.FailedTasks += int64(result.Failed)
	j.metrics.RowsUpserted += int64(result.Rows)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *IngestJob) GetMetrics() IngestMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return IngestMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		SuccessfulTasks: j.metrics.SuccessfulTasks,
		FailedTasks:     j.metrics.FailedTasks,
		RowsUpserted:    j.metrics.RowsUpserted,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *IngestJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"successful_tasks":  m.SuccessfulTasks,
		"failed_tasks":      m.FailedTasks,
		"rows_upserted":     m.RowsUpserted,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
