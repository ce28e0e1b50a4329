package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nickykapur/jobpool/app/cfg"
	"github.com/nickykapur/jobpool/app/database"
	"github.com/nickykapur/jobpool/app/jobs"
	"github.com/nickykapur/jobpool/app/profiles"
	"github.com/nickykapur/jobpool/app/scraper"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler drives scheduled scrape-and-ingest runs. Tasks are processed by
// a single worker so at most one ingestion run mutates the store at a time;
// there is no cross-process locking, so serializing runs here is what keeps
// signature lookups and quota ranking race-free.
type Scheduler struct {
	profileCache *profiles.Cache
	collector    *scraper.Collector
	pipeline     *jobs.Pipeline
	userRepo     database.UserRepository
	schedule     string
	cron         *cron.Cron
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface
}

func NewScheduler(profileCache *profiles.Cache, collector *scraper.Collector,
	pipeline *jobs.Pipeline, userRepo database.UserRepository) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		profileCache: profileCache,
		collector:    collector,
		pipeline:     pipeline,
		userRepo:     userRepo,
		schedule:     cfg.Get().ScrapeSchedule,
		cron:         cron.New(),
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() error {
	s.wg.Add(1)
	go s.worker()

	s.enqueueStartupTasks()

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueScheduledTasks); err != nil {
		return fmt.Errorf("invalid scrape schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	syncTask := NewSyncProfilesTask(s.profileCache, s.userRepo)
	if err := s.EnqueueTask(syncTask); err != nil {
		slog.Warn("Failed to enqueue SyncProfilesTask", "error", err)
	}
}

func (s *Scheduler) enqueueScheduledTasks() {
	syncTask := NewSyncProfilesTask(s.profileCache, s.userRepo)
	if err := s.EnqueueTask(syncTask); err != nil {
		slog.Warn("Failed to enqueue SyncProfilesTask", "error", err)
	}

	ingestTask := NewIngestRunTask(s.profileCache, s.collector, s.pipeline)
	if err := s.EnqueueTask(ingestTask); err != nil {
		slog.Warn("Failed to enqueue IngestRunTask", "error", err)
	}
}

// worker processes the queue sequentially. A second worker would reintroduce
// the concurrent-ingestion races the design explicitly rules out.
func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 15*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()),
			"id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()),
				"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(),
				"delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry",
						"type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry",
							"type", string(task.GetType()), "id", task.GetID(),
							"retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()),
				"id", task.GetID(), "retry_count", task.GetRetryCount(),
				"max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
