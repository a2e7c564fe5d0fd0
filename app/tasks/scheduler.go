package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/softdex/softdex/app/cfg"
	"github.com/softdex/softdex/app/database"
	"github.com/softdex/softdex/app/normalize"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	productRepo database.ProductRepository
	service     *normalize.Service
	interval    time.Duration
	workerCount int
	batchSize   int
	batchDelay  time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(productRepo database.ProductRepository, service *normalize.Service) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	return &Scheduler{
		productRepo: productRepo,
		service:     service,
		interval:    time.Duration(c.SchedulerInterval) * time.Second,
		workerCount: c.WorkerCount,
		batchSize:   c.MaxProductsPerBatch,
		batchDelay:  time.Duration(c.BatchDelay) * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueuePendingProducts()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueuePendingProducts()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
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

// enqueuePendingProducts sweeps products still pending (not yet claimed or
// returned to pending for a retry) into batch tasks. Products for which a
// task is already queued resolve to a no-op when that task fails to claim
// them.
func (s *Scheduler) enqueuePendingProducts() {
	products, err := s.productRepo.GetPendingProducts(s.batchSize * 10)
	if err != nil {
		slog.Warn("Failed to load pending products for sweep", "error", err)
		return
	}
	if len(products) == 0 {
		slog.Debug("No pending products found")
		return
	}

	slog.Debug("Sweeping pending products into batches", "count", len(products))

	for start := 0; start < len(products); start += s.batchSize {
		end := start + s.batchSize
		if end > len(products) {
			end = len(products)
		}

		ids := make([]int64, 0, end-start)
		for _, product := range products[start:end] {
			ids = append(ids, product.ID)
		}

		batchTask := NewNormalizeBatchTask(ids, s.productRepo, s.service, s.batchDelay)
		if err := s.EnqueueTask(batchTask); err != nil {
			slog.Warn("Failed to enqueue NormalizeBatchTask", "products", len(ids), "error", err)
			return
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "label", task.GetLabel(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
