package database

// NormalizedProduct is one reconciled normalization result ready to be
// persisted as part of a batch completion.
type NormalizedProduct struct {
	ProductID   int64
	Description string
	Category    string
}

// ProductFilter narrows the product listing read path.
type ProductFilter struct {
	ReviewStatus     string
	ProcessingStatus string
	Limit            int
	Offset           int
}

type ProductRepository interface {
	// CreateProduct inserts a product unless one with the same name exists.
	// Returns the row id and whether a new row was created.
	CreateProduct(p Product) (int64, bool, error)
	GetProductByName(name string) (*Product, error)
	GetProductByID(id int64) (*Product, error)
	GetProductsByIDs(ids []int64) ([]Product, error)
	GetPendingProducts(limit int) ([]Product, error)
	GetProductCount() (int, error)

	UpdateProcessingStatus(id int64, status string) error
	// ClaimPending transitions the given products from pending to processing
	// in a single transaction and returns the ids actually claimed.
	ClaimPending(ids []int64) ([]int64, error)
	// CompleteBatch inserts one clean product per result and marks the
	// originating products completed, all in a single transaction.
	CompleteBatch(results []NormalizedProduct) error
	// FailBatch marks every given product failed in a single transaction.
	FailBatch(ids []int64) error

	ListProducts(filter ProductFilter) ([]ProductView, error)
	GetStats() (*Stats, error)
}

type CleanProductRepository interface {
	GetCleanProduct(id int64) (*CleanProduct, error)
	GetCleanProductByProductID(productID int64) (*CleanProduct, error)
	SetReviewStatus(id int64, status string) error
}

type ReviewRepository interface {
	CreateReview(review Review) (int64, error)
	GetReviewsByCleanProductID(cleanProductID int64) ([]Review, error)
}
