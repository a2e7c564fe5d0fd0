package normalize

import (
	"fmt"
	"strings"

	"github.com/softdex/softdex/app/database"
	"github.com/softdex/softdex/app/taxonomy"
)

// Placeholders rendered for absent raw fields so the model always sees a
// consistently shaped prompt.
const (
	PlaceholderName        = "Unknown Product"
	PlaceholderDescription = "No description available"
	PlaceholderCategory    = "No category"
	PlaceholderWebsite     = "No website"
)

// Prompter builds normalization prompts from raw product fields. Pure text
// construction, no I/O.
type Prompter struct {
	taxonomy *taxonomy.Cache
}

func NewPrompter(tax *taxonomy.Cache) *Prompter {
	return &Prompter{taxonomy: tax}
}

// Single builds the system and user prompts for one product.
func (p *Prompter) Single(product database.Product) (string, string) {
	tax := p.taxonomy.Get()

	var b strings.Builder
	p.writeProductFields(&b, product)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Please analyze this software product and provide a JSON response with:\n")
	p.writeFieldRules(&b, tax)

	return p.systemPrompt(tax), b.String()
}

// Batch builds the system and user prompts for a multi-product request. The
// user prompt declares the expected response shape: a "results" array with
// one entry per product in input order.
func (p *Prompter) Batch(products []database.Product) (string, string) {
	tax := p.taxonomy.Get()

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the %d software products listed below and provide a JSON response of the form:\n\n", len(products))
	b.WriteString(`{"results": [{"name": "<product name>", "description": "<description>", "category": "<category>"}, ...]}`)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "The \"results\" array must contain exactly %d entries, one per product, in the same order as the products below.\n", len(products))
	b.WriteString("For every entry provide:\n")
	p.writeFieldRules(&b, tax)
	b.WriteString("\n")

	for i, product := range products {
		fmt.Fprintf(&b, "Product %d:\n", i+1)
		p.writeProductFields(&b, product)
		b.WriteString("\n")
	}

	return p.systemPrompt(tax), strings.TrimRight(b.String(), "\n")
}

func (p *Prompter) systemPrompt(tax *taxonomy.Config) string {
	return fmt.Sprintf("You are a software categorization expert. "+
		"Analyze the product description and categorize it into one of the predefined categories. "+
		"Create exactly %d sentences for the description - no more, no less.", tax.DescriptionSentences)
}

func (p *Prompter) writeProductFields(b *strings.Builder, product database.Product) {
	fmt.Fprintf(b, "Product Name: %s\n", fieldOr(product.Name, PlaceholderName))
	fmt.Fprintf(b, "Website: %s\n", fieldOr(product.Website, PlaceholderWebsite))
	fmt.Fprintf(b, "Raw Category: %s\n", fieldOr(product.SourceCategory, PlaceholderCategory))
	fmt.Fprintf(b, "Raw Description: %s\n", fieldOr(product.Description, PlaceholderDescription))
}

func (p *Prompter) writeFieldRules(b *strings.Builder, tax *taxonomy.Config) {
	fmt.Fprintf(b, "1. description: EXACTLY %d sentences - no more, no less. Make it professional and clear while preserving important context.\n", tax.DescriptionSentences)
	fmt.Fprintf(b, "2. category: Choose from: %s\n", strings.Join(tax.Slugs(), ", "))

	var hints []string
	for _, category := range tax.Categories {
		if category.Hint != "" {
			hints = append(hints, fmt.Sprintf("- %s: %s", category.Slug, category.Hint))
		}
	}
	if len(hints) > 0 {
		b.WriteString("\nCategory guide:\n")
		b.WriteString(strings.Join(hints, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(b, "If the product doesn't fit clearly into the other categories, use \"%s\".\n", tax.DefaultCategory)
	fmt.Fprintf(b, "IMPORTANT: The description must be exactly %d sentences. Do not truncate or add ellipsis.\n", tax.DescriptionSentences)
}

func fieldOr(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
