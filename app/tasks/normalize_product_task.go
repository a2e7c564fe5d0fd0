package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/softdex/softdex/app/database"
	"github.com/softdex/softdex/app/normalize"
)

// NormalizeProductTask runs the full single-product path: claim, prompt,
// model call, reconcile, persist. Any model-side failure transitions the
// product to failed.
type NormalizeProductTask struct {
	Task
	ProductID   int64
	productRepo database.ProductRepository
	service     *normalize.Service
}

func NewNormalizeProductTask(productID int64, label string, productRepo database.ProductRepository, service *normalize.Service) *NormalizeProductTask {
	return &NormalizeProductTask{
		Task:        NewTask(TaskTypeNormalizeProduct, label),
		ProductID:   productID,
		productRepo: productRepo,
		service:     service,
	}
}

func (t *NormalizeProductTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	claimed, err := t.productRepo.ClaimPending([]int64{t.ProductID})
	if err != nil {
		return fmt.Errorf("failed to claim product: %w", err)
	}
	if len(claimed) == 0 {
		slog.Debug("Product not pending, skipping", "product_id", t.ProductID)
		return nil
	}

	product, err := t.productRepo.GetProductByID(t.ProductID)
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return fmt.Errorf("product %d not found", t.ProductID)
	}

	result, err := t.service.ProcessSingle(ctx, *product)
	if err != nil {
		if failErr := t.productRepo.UpdateProcessingStatus(t.ProductID, database.StatusFailed); failErr != nil {
			return fmt.Errorf("failed to mark product failed after %v: %w", err, failErr)
		}

		if errors.Is(err, normalize.ErrNotConfigured) {
			slog.Error("Normalization skipped, model endpoint not configured", "product", product.Name)
		} else {
			slog.Error("Product normalization failed", "product", product.Name, "error", err)
		}
		return nil
	}

	normalized := []database.NormalizedProduct{{
		ProductID:   result.ProductID,
		Description: result.Description,
		Category:    result.Category,
	}}

	if err := t.productRepo.CompleteBatch(normalized); err != nil {
		return fmt.Errorf("failed to persist clean product: %w", err)
	}

	slog.Info("Task completed",
		"type", "NormalizeProduct",
		"product", product.Name,
		"duration", t.GetDuration(),
		"category", result.Category)

	return nil
}
