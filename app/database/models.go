package database

import (
	"time"
)

// Processing status values for products.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Review status values for clean products.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Review actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Product is an as-scraped product record awaiting normalization.
type Product struct {
	ID               int64
	Name             string // Unique, used for ingestion deduplication
	Description      string
	Website          string
	Logo             string
	SourceCategory   string // Coarse category reported by the scraper
	ProcessingStatus string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CleanProduct is the normalized output of the AI pipeline, one per product.
type CleanProduct struct {
	ID           int64
	ProductID    int64
	Description  string // Contract: exactly the configured number of sentences
	Category     string // Always a member of the taxonomy
	ReviewStatus string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Review is one human decision on a clean product. Append-only.
type Review struct {
	ID             int64
	CleanProductID int64
	Action         string
	Reason         string
	CreatedAt      time.Time
}

// ProductView joins a product with its clean counterpart for the read path.
type ProductView struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Website          string     `json:"website"`
	Logo             string     `json:"logo,omitempty"`
	ProcessingStatus string     `json:"processing_status"`
	CleanProductID   *int64     `json:"clean_product_id,omitempty"`
	CleanDescription *string    `json:"clean_description,omitempty"`
	Category         *string    `json:"category,omitempty"`
	ReviewStatus     string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// Stats aggregates product counts per status.
type Stats struct {
	Products struct {
		Total      int `json:"total"`
		Pending    int `json:"pending"`
		Processing int `json:"processing"`
		Completed  int `json:"completed"`
		Failed     int `json:"failed"`
	} `json:"raw_products"`
	CleanProducts struct {
		Total         int `json:"total"`
		PendingReview int `json:"pending_review"`
		Approved      int `json:"approved"`
		Rejected      int `json:"rejected"`
	} `json:"clean_products"`
}
