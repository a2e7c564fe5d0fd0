package api

// IngestRequest is one scraped product payload. Only the name is mandatory;
// absent fields are tolerated and rendered as placeholders downstream.
type IngestRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Logo        string `json:"logo"`
	Category    string `json:"category"`
}

type BulkIngestRequest struct {
	Products []IngestRequest `json:"products" binding:"required"`
}

// BulkIngestItemResult reports the outcome for one product of a bulk
// ingestion. Duplicates are "skipped", never an error.
type BulkIngestItemResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "created" or "skipped"
	Message string `json:"message"`
	RawID   int64  `json:"raw_id"`
}

type ReviewRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}
