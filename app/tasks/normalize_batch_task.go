package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/softdex/softdex/app/database"
	"github.com/softdex/softdex/app/normalize"
)

// NormalizeBatchTask normalizes a batch of products through a single model
// call. The batch is the unit of call failure: if the model call fails,
// every claimed member ends up failed and no clean product is created. A
// per-product shortfall inside a successful reply resolves to a default
// record and still completes that product.
type NormalizeBatchTask struct {
	Task
	ProductIDs  []int64
	productRepo database.ProductRepository
	service     *normalize.Service
	batchDelay  time.Duration

	claimed []int64
}

func NewNormalizeBatchTask(productIDs []int64, productRepo database.ProductRepository, service *normalize.Service, batchDelay time.Duration) *NormalizeBatchTask {
	return &NormalizeBatchTask{
		Task:        NewTask(TaskTypeNormalizeBatch, fmt.Sprintf("batch of %d", len(productIDs))),
		ProductIDs:  productIDs,
		productRepo: productRepo,
		service:     service,
		batchDelay:  batchDelay,
	}
}

func (t *NormalizeBatchTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// A retried task keeps the members it already claimed; otherwise a
	// duplicate enqueue for the same products resolves to a no-op here.
	if t.claimed == nil {
		claimed, err := t.productRepo.ClaimPending(t.ProductIDs)
		if err != nil {
			return fmt.Errorf("failed to claim products: %w", err)
		}
		t.claimed = claimed
	}

	if len(t.claimed) == 0 {
		slog.Debug("No pending products left in batch, skipping", "task", t.GetID())
		return nil
	}

	products, err := t.productRepo.GetProductsByIDs(t.claimed)
	if err != nil {
		return fmt.Errorf("failed to load batch products: %w", err)
	}

	results, err := t.service.ProcessBatch(ctx, products)
	if err != nil {
		// Call failure: the whole partition fails, no clean rows.
		if failErr := t.productRepo.FailBatch(t.claimed); failErr != nil {
			return fmt.Errorf("failed to mark batch failed after %v: %w", err, failErr)
		}

		if errors.Is(err, normalize.ErrNotConfigured) {
			slog.Error("Normalization skipped, model endpoint not configured", "products", len(t.claimed))
		} else {
			slog.Error("Batch normalization failed", "products", len(t.claimed), "error", err)
		}
		return nil
	}

	normalized := make([]database.NormalizedProduct, len(results))
	defaultedCount := 0
	for i, result := range results {
		normalized[i] = database.NormalizedProduct{
			ProductID:   result.ProductID,
			Description: result.Description,
			Category:    result.Category,
		}
		if result.Defaulted {
			defaultedCount++
		}
	}

	if err := t.productRepo.CompleteBatch(normalized); err != nil {
		return fmt.Errorf("failed to complete batch: %w", err)
	}

	slog.Info("Task completed",
		"type", "NormalizeBatch",
		"duration", t.GetDuration(),
		"products", len(t.claimed),
		"defaulted", defaultedCount)

	t.pause(ctx)

	return nil
}

// pause spaces consecutive batch requests out on the same worker.
func (t *NormalizeBatchTask) pause(ctx context.Context) {
	if t.batchDelay <= 0 {
		return
	}

	timer := time.NewTimer(t.batchDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
