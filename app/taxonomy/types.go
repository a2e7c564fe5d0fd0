package taxonomy

// Category is a single entry of the closed category set.
type Category struct {
	Slug string `yaml:"slug"`
	Hint string `yaml:"hint"`
}

// Config describes the category taxonomy used for normalization.
type Config struct {
	Categories           []Category `yaml:"categories"`
	DefaultCategory      string     `yaml:"default_category"`
	DescriptionSentences int        `yaml:"description_sentences"`
}

// Slugs returns the category identifiers in declaration order.
func (c *Config) Slugs() []string {
	slugs := make([]string, len(c.Categories))
	for i, category := range c.Categories {
		slugs[i] = category.Slug
	}
	return slugs
}

// Validate maps an arbitrary string onto the closed category set. Unknown
// input maps to the default category; the second return value reports
// whether the input matched. Total, never errors.
func (c *Config) Validate(raw string) (string, bool) {
	for _, category := range c.Categories {
		if category.Slug == raw {
			return category.Slug, true
		}
	}
	return c.DefaultCategory, false
}

// Default returns the built-in taxonomy, used when no taxonomy file is
// present.
func Default() *Config {
	return &Config{
		Categories: []Category{
			{Slug: "sales_marketing", Hint: "CRM, outreach, advertising and marketing automation tools"},
			{Slug: "devtools", Hint: "developer tooling, CI/CD, APIs, infrastructure and code quality"},
			{Slug: "data_analytics", Hint: "BI, dashboards, data pipelines and analytics platforms"},
			{Slug: "productivity", Hint: "collaboration, project management and office tooling"},
			{Slug: "finance", Hint: "accounting, billing, payments and financial planning"},
			{Slug: "other", Hint: "anything that does not clearly fit the categories above"},
		},
		DefaultCategory:      "other",
		DescriptionSentences: 2,
	}
}
