package normalize

import (
	"context"
	"fmt"

	"github.com/softdex/softdex/app/database"
)

// ChatClient abstracts the model endpoint for testing.
type ChatClient interface {
	Run(ctx context.Context, systemPrompt, userPrompt string, productCount int) (string, error)
}

// Service drives the normalization pipeline for a set of products: rate
// limit, prompt, model call, reconciliation. Status transitions and
// persistence stay with the caller.
type Service struct {
	client     ChatClient
	prompter   *Prompter
	reconciler *Reconciler
	limiter    *RateLimiter
}

func NewService(client ChatClient, prompter *Prompter, reconciler *Reconciler, limiter *RateLimiter) *Service {
	return &Service{
		client:     client,
		prompter:   prompter,
		reconciler: reconciler,
		limiter:    limiter,
	}
}

// ProcessSingle normalizes one product. Any failure (rate-limit cancel,
// call, parse, missing field) propagates to the caller.
func (s *Service) ProcessSingle(ctx context.Context, product database.Product) (Result, error) {
	systemPrompt, userPrompt := s.prompter.Single(product)

	if err := s.limiter.Admit(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	content, err := s.client.Run(ctx, systemPrompt, userPrompt, 1)
	if err != nil {
		return Result{}, fmt.Errorf("model call failed: %w", err)
	}

	result, err := s.reconciler.Single(content, product)
	if err != nil {
		return Result{}, fmt.Errorf("failed to reconcile model response: %w", err)
	}

	return result, nil
}

// ProcessBatch normalizes a batch through one model call. Only the call
// itself (or an unusable top-level reply) fails the batch; per-product
// shortfalls resolve to default records inside the reconciler.
func (s *Service) ProcessBatch(ctx context.Context, products []database.Product) ([]Result, error) {
	systemPrompt, userPrompt := s.prompter.Batch(products)

	if err := s.limiter.Admit(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	content, err := s.client.Run(ctx, systemPrompt, userPrompt, len(products))
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	results, err := s.reconciler.Batch(content, products)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile model response: %w", err)
	}

	return results, nil
}
