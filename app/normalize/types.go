package normalize

// Result is one normalized product record, reconciled against the model
// response and carrying a taxonomy-validated category.
type Result struct {
	ProductID   int64
	Description string
	Category    string
	Defaulted   bool // true when the deterministic default record was used
}
