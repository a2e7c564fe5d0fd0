package normalize

import (
	"strings"
	"testing"

	"github.com/softdex/softdex/app/database"
	"github.com/softdex/softdex/app/taxonomy"
)

func newTestPrompter() *Prompter {
	return NewPrompter(taxonomy.NewCache("nonexistent.yml"))
}

func TestPrompter_Single(t *testing.T) {
	prompter := newTestPrompter()

	product := database.Product{
		ID:             1,
		Name:           "Acme CRM",
		Description:    "A CRM for small businesses",
		Website:        "https://acme.example.com",
		SourceCategory: "CRM Software",
	}

	system, user := prompter.Single(product)

	if !strings.Contains(system, "software categorization expert") {
		t.Errorf("System prompt should establish the categorization role, got: %s", system)
	}
	if !strings.Contains(system, "exactly 2 sentences") {
		t.Errorf("System prompt should require the sentence count, got: %s", system)
	}

	for _, expected := range []string{
		"Product Name: Acme CRM",
		"Website: https://acme.example.com",
		"Raw Category: CRM Software",
		"Raw Description: A CRM for small businesses",
		"EXACTLY 2 sentences",
	} {
		if !strings.Contains(user, expected) {
			t.Errorf("User prompt missing %q", expected)
		}
	}

	for _, slug := range []string{"sales_marketing", "devtools", "data_analytics", "productivity", "finance", "other"} {
		if !strings.Contains(user, slug) {
			t.Errorf("User prompt missing category %q", slug)
		}
	}

	if !strings.Contains(user, `use "other"`) {
		t.Error("User prompt should point ambiguous products at the catch-all category")
	}
}

func TestPrompter_Single_MissingFields(t *testing.T) {
	prompter := newTestPrompter()

	_, user := prompter.Single(database.Product{ID: 2})

	for _, expected := range []string{
		"Product Name: " + PlaceholderName,
		"Website: " + PlaceholderWebsite,
		"Raw Category: " + PlaceholderCategory,
		"Raw Description: " + PlaceholderDescription,
	} {
		if !strings.Contains(user, expected) {
			t.Errorf("User prompt should render placeholder %q for missing fields", expected)
		}
	}
}

func TestPrompter_Batch(t *testing.T) {
	prompter := newTestPrompter()

	products := []database.Product{
		{ID: 1, Name: "Acme CRM", Description: "CRM tool"},
		{ID: 2, Name: "DevBox", Description: "Cloud IDE"},
		{ID: 3, Name: "LedgerPro"},
	}

	_, user := prompter.Batch(products)

	if !strings.Contains(user, "Analyze the 3 software products") {
		t.Errorf("Batch prompt should state the product count, got: %s", user)
	}
	if !strings.Contains(user, `"results"`) {
		t.Error("Batch prompt should declare the results array shape")
	}
	if !strings.Contains(user, "exactly 3 entries") {
		t.Error("Batch prompt should require one entry per product")
	}
	if !strings.Contains(user, "same order") {
		t.Error("Batch prompt should require input ordering")
	}

	// Products are listed in input order
	first := strings.Index(user, "Product 1:")
	second := strings.Index(user, "Product 2:")
	third := strings.Index(user, "Product 3:")
	if first == -1 || second == -1 || third == -1 {
		t.Fatal("Batch prompt should number every product")
	}
	if !(first < second && second < third) {
		t.Error("Batch prompt should list products in input order")
	}

	if !strings.Contains(user, "Acme CRM") || !strings.Contains(user, "DevBox") {
		t.Error("Batch prompt should include product names")
	}
	if !strings.Contains(user, "Raw Description: "+PlaceholderDescription) {
		t.Error("Batch prompt should render placeholders for missing fields")
	}
}
