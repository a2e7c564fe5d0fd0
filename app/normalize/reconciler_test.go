package normalize

import (
	"fmt"
	"testing"

	"github.com/softdex/softdex/app/database"
	"github.com/softdex/softdex/app/taxonomy"
)

func newTestReconciler() *Reconciler {
	return NewReconciler(taxonomy.NewCache("nonexistent.yml"))
}

func testProducts(n int) []database.Product {
	products := make([]database.Product, n)
	for i := range products {
		products[i] = database.Product{
			ID:   int64(i + 1),
			Name: fmt.Sprintf("Product %d", i+1),
		}
	}
	return products
}

func TestReconciler_Batch_PositionalMatch(t *testing.T) {
	reconciler := newTestReconciler()
	products := testProducts(2)

	content := `{"results": [
		{"name": "Product 1", "description": "First sentence. Second sentence.", "category": "devtools"},
		{"name": "Product 2", "description": "One. Two.", "category": "finance"}
	]}`

	results, err := reconciler.Batch(content, products)
	if err != nil {
		t.Fatalf("Batch should succeed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].ProductID != 1 || results[0].Category != "devtools" {
		t.Errorf("First result mismatched: %+v", results[0])
	}
	if results[1].ProductID != 2 || results[1].Category != "finance" {
		t.Errorf("Second result mismatched: %+v", results[1])
	}
	for i, result := range results {
		if result.Defaulted {
			t.Errorf("Result %d should not be defaulted", i)
		}
	}
}

func TestReconciler_Batch_NameFallback(t *testing.T) {
	reconciler := newTestReconciler()
	products := testProducts(3)

	// Only two entries, out of order: product 3 is found by name, product 2
	// falls through to the default record
	content := `{"results": [
		{"name": "Product 3", "description": "Third. Product.", "category": "productivity"},
		{"name": "Product 1", "description": "First. Product.", "category": "devtools"}
	]}`

	results, err := reconciler.Batch(content, products)
	if err != nil {
		t.Fatalf("Batch should succeed: %v", err)
	}

	// Position 0 holds an entry for product 3, but positional matching does
	// not inspect names; it is taken as product 1's answer only if usable.
	// Entry 0 is usable so product 1 gets it positionally.
	if results[0].Category != "productivity" || results[0].Defaulted {
		t.Errorf("Product 1 should match positionally, got %+v", results[0])
	}
	if results[1].Category != "devtools" || results[1].Defaulted {
		t.Errorf("Product 2 should match positionally, got %+v", results[1])
	}
	// Product 3 is out of positional range and finds its entry by name
	if results[2].Category != "productivity" || results[2].Defaulted {
		t.Errorf("Product 3 should match by name, got %+v", results[2])
	}
}

func TestReconciler_Batch_DefaultIsIndependent(t *testing.T) {
	reconciler := newTestReconciler()
	products := testProducts(3)

	// Entry for product 2 is present but unusable (no category); products 1
	// and 3 must keep the model's values
	content := `{"results": [
		{"name": "Product 1", "description": "First. Product.", "category": "devtools"},
		{"name": "Product 2", "description": "Broken entry."},
		{"name": "Product 3", "description": "Third. Product.", "category": "finance"}
	]}`

	results, err := reconciler.Batch(content, products)
	if err != nil {
		t.Fatalf("Batch should succeed: %v", err)
	}

	if results[0].Defaulted || results[0].Category != "devtools" {
		t.Errorf("Product 1 should keep model values, got %+v", results[0])
	}
	if !results[1].Defaulted {
		t.Errorf("Product 2 should be defaulted, got %+v", results[1])
	}
	if results[1].Category != "other" {
		t.Errorf("Defaulted product should get the catch-all category, got %s", results[1].Category)
	}
	expected := "Product 2 is a software product that provides various features and functionality."
	if results[1].Description != expected {
		t.Errorf("Defaulted description mismatch: %s", results[1].Description)
	}
	if results[2].Defaulted || results[2].Category != "finance" {
		t.Errorf("Product 3 should keep model values, got %+v", results[2])
	}
}

func TestReconciler_Batch_OneResultPerProduct(t *testing.T) {
	reconciler := newTestReconciler()

	for _, size := range []int{1, 2, 5, 10} {
		products := testProducts(size)

		// Empty results array: every product gets a default record
		results, err := reconciler.Batch(`{"results": []}`, products)
		if err != nil {
			t.Fatalf("Batch of %d should succeed: %v", size, err)
		}
		if len(results) != size {
			t.Fatalf("Expected %d results for batch of %d, got %d", size, size, len(results))
		}
		for i, result := range results {
			if result.ProductID != products[i].ID {
				t.Errorf("Result %d carries wrong product id %d", i, result.ProductID)
			}
			if result.Description == "" {
				t.Errorf("Result %d has empty description", i)
			}
			if result.Category == "" {
				t.Errorf("Result %d has empty category", i)
			}
		}
	}
}

func TestReconciler_Batch_InvalidCategory(t *testing.T) {
	reconciler := newTestReconciler()
	products := testProducts(1)

	content := `{"results": [{"name": "Product 1", "description": "One. Two.", "category": "spaceships"}]}`

	results, err := reconciler.Batch(content, products)
	if err != nil {
		t.Fatalf("Batch should succeed: %v", err)
	}

	if results[0].Category != "other" {
		t.Errorf("Unrecognized category should map to the catch-all, got %s", results[0].Category)
	}
	if results[0].Defaulted {
		t.Error("Category validation fallback is not a defaulted record")
	}
	if results[0].Description != "One. Two." {
		t.Errorf("Model description should be kept, got %s", results[0].Description)
	}
}

func TestReconciler_Batch_MalformedJSON(t *testing.T) {
	reconciler := newTestReconciler()

	if _, err := reconciler.Batch(`not json at all`, testProducts(2)); err == nil {
		t.Error("Expected error for non-JSON content")
	}
}

func TestReconciler_Batch_MissingResultsField(t *testing.T) {
	reconciler := newTestReconciler()

	if _, err := reconciler.Batch(`{"items": []}`, testProducts(2)); err == nil {
		t.Error("Expected error when the results field is absent")
	}
}

func TestReconciler_Single(t *testing.T) {
	reconciler := newTestReconciler()
	product := database.Product{ID: 7, Name: "Acme CRM"}

	result, err := reconciler.Single(`{"description": "One. Two.", "category": "sales_marketing"}`, product)
	if err != nil {
		t.Fatalf("Single should succeed: %v", err)
	}
	if result.ProductID != 7 {
		t.Errorf("Expected product id 7, got %d", result.ProductID)
	}
	if result.Category != "sales_marketing" {
		t.Errorf("Expected category sales_marketing, got %s", result.Category)
	}
}

func TestReconciler_Single_MissingFields(t *testing.T) {
	reconciler := newTestReconciler()
	product := database.Product{ID: 7, Name: "Acme CRM"}

	if _, err := reconciler.Single(`{"category": "devtools"}`, product); err == nil {
		t.Error("Expected error for missing description")
	}
	if _, err := reconciler.Single(`{"description": "One. Two."}`, product); err == nil {
		t.Error("Expected error for missing category")
	}
	if _, err := reconciler.Single(`garbage`, product); err == nil {
		t.Error("Expected error for non-JSON content")
	}
}
