package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/softdex/softdex/app/database"
	"github.com/softdex/softdex/app/taxonomy"
)

// DefaultDescriptionFormat is the deterministic description used when the
// model returned nothing usable for a product.
const DefaultDescriptionFormat = "%s is a software product that provides various features and functionality."

// Reconciler maps a model reply back onto the originating products. Batch
// replies are matched positionally first, by product name second, and fall
// back to a deterministic default record per product.
type Reconciler struct {
	taxonomy *taxonomy.Cache
}

func NewReconciler(tax *taxonomy.Cache) *Reconciler {
	return &Reconciler{taxonomy: tax}
}

type resultEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type batchPayload struct {
	Results []resultEntry `json:"results"`
}

// Single parses a single-product reply. A missing description or category is
// a processing failure here, not a defaultable shortfall: the whole call
// covered one product.
func (r *Reconciler) Single(content string, product database.Product) (Result, error) {
	var entry resultEntry
	if err := json.Unmarshal([]byte(content), &entry); err != nil {
		return Result{}, fmt.Errorf("model response is not valid JSON: %w", err)
	}

	if entry.Description == "" {
		return Result{}, fmt.Errorf("model response is missing required field: description")
	}
	if entry.Category == "" {
		return Result{}, fmt.Errorf("model response is missing required field: category")
	}

	return r.build(product, entry), nil
}

// Batch produces exactly one result per input product. Reconciliation is
// independent per product: a missing or malformed entry for one product
// never affects the others.
func (r *Reconciler) Batch(content string, products []database.Product) ([]Result, error) {
	var payload batchPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("model response is not valid JSON: %w", err)
	}
	if payload.Results == nil {
		return nil, fmt.Errorf("model response is missing required field: results")
	}

	results := make([]Result, len(products))
	for i, product := range products {
		results[i] = r.match(i, product, payload.Results)
	}

	return results, nil
}

func (r *Reconciler) match(index int, product database.Product, entries []resultEntry) Result {
	if index < len(entries) && usable(entries[index]) {
		return r.build(product, entries[index])
	}

	for _, entry := range entries {
		if entry.Name == product.Name && usable(entry) {
			return r.build(product, entry)
		}
	}

	slog.Warn("No usable model result for product, using default record", "product", product.Name, "index", index)

	return Result{
		ProductID:   product.ID,
		Description: fmt.Sprintf(DefaultDescriptionFormat, product.Name),
		Category:    r.taxonomy.Get().DefaultCategory,
		Defaulted:   true,
	}
}

func usable(entry resultEntry) bool {
	return entry.Description != "" && entry.Category != ""
}

func (r *Reconciler) build(product database.Product, entry resultEntry) Result {
	category, ok := r.taxonomy.Get().Validate(entry.Category)
	if !ok {
		slog.Warn("Invalid category, using default", "category", entry.Category, "default", category, "product", product.Name)
	}

	return Result{
		ProductID:   product.ID,
		Description: entry.Description,
		Category:    category,
	}
}
