package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/softdex/softdex/app/cfg"
	"github.com/softdex/softdex/app/database"
	"github.com/softdex/softdex/app/normalize"
	"github.com/softdex/softdex/app/tasks"
)

type Handler struct {
	productRepo database.ProductRepository
	cleanRepo   database.CleanProductRepository
	reviewRepo  database.ReviewRepository
	service     *normalize.Service
	scheduler   tasks.TaskSchedulerInterface
	batchSize   int
	batchDelay  time.Duration
}

func NewHandler(productRepo database.ProductRepository, cleanRepo database.CleanProductRepository,
	reviewRepo database.ReviewRepository, service *normalize.Service,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	c := cfg.Get()

	return &Handler{
		productRepo: productRepo,
		cleanRepo:   cleanRepo,
		reviewRepo:  reviewRepo,
		service:     service,
		scheduler:   scheduler,
		batchSize:   c.MaxProductsPerBatch,
		batchDelay:  time.Duration(c.BatchDelay) * time.Second,
	}
}

// Ingest accepts one scraped product, deduplicates it by name and schedules
// background normalization for a newly created row. The response never
// depends on the normalization outcome.
func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	id, created, err := h.productRepo.CreateProduct(database.Product{
		Name:           req.Name,
		Description:    req.Description,
		Website:        req.Website,
		Logo:           req.Logo,
		SourceCategory: req.Category,
	})
	if err != nil {
		slog.Error("Database error", "operation", "create_product", "product", req.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest product"})
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{
			"message": "Product already exists",
			"raw_id":  id,
			"status":  "skipped",
		})
		return
	}

	task := tasks.NewNormalizeProductTask(id, req.Name, h.productRepo, h.service)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		// The sweep picks the product up later; ingestion still succeeded.
		slog.Warn("Failed to enqueue NormalizeProductTask", "product", req.Name, "error", err)
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Product created successfully",
		"raw_id":  id,
		"status":  database.StatusPending,
	})
}

// BulkIngest deduplicates and inserts a list of scraped products, then
// schedules one normalization task per batch-size partition of the created
// rows.
func (h *Handler) BulkIngest(c *gin.Context) {
	var req BulkIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	results := make([]BulkIngestItemResult, 0, len(req.Products))
	var createdIDs []int64
	createdCount := 0
	skippedCount := 0

	for _, product := range req.Products {
		if product.Name == "" {
			results = append(results, BulkIngestItemResult{
				Name:    product.Name,
				Status:  "skipped",
				Message: "Product name is required",
			})
			skippedCount++
			continue
		}

		id, created, err := h.productRepo.CreateProduct(database.Product{
			Name:           product.Name,
			Description:    product.Description,
			Website:        product.Website,
			Logo:           product.Logo,
			SourceCategory: product.Category,
		})
		if err != nil {
			slog.Error("Database error", "operation", "create_product", "product", product.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to bulk ingest products"})
			return
		}

		if created {
			results = append(results, BulkIngestItemResult{
				Name:    product.Name,
				Status:  "created",
				Message: "Product created successfully",
				RawID:   id,
			})
			createdIDs = append(createdIDs, id)
			createdCount++
		} else {
			results = append(results, BulkIngestItemResult{
				Name:    product.Name,
				Status:  "skipped",
				Message: "Product already exists",
				RawID:   id,
			})
			skippedCount++
		}
	}

	for start := 0; start < len(createdIDs); start += h.batchSize {
		end := start + h.batchSize
		if end > len(createdIDs) {
			end = len(createdIDs)
		}

		task := tasks.NewNormalizeBatchTask(createdIDs[start:end], h.productRepo, h.service, h.batchDelay)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue NormalizeBatchTask", "products", end-start, "error", err)
		}
	}

	slog.Info("Bulk ingestion completed", "total", len(req.Products), "created", createdCount, "skipped", skippedCount)

	c.JSON(http.StatusAccepted, gin.H{
		"total_processed": len(req.Products),
		"created":         createdCount,
		"skipped":         skippedCount,
		"results":         results,
	})
}

func (h *Handler) GetProducts(c *gin.Context) {
	filter := database.ProductFilter{
		ReviewStatus:     c.Query("status"),
		ProcessingStatus: c.Query("processing_status"),
		Limit:            100,
	}

	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		filter.Limit = parsed
	}
	if offset := c.Query("offset"); offset != "" {
		parsed, err := strconv.Atoi(offset)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset parameter"})
			return
		}
		filter.Offset = parsed
	}

	products, err := h.productRepo.ListProducts(filter)
	if err != nil {
		slog.Error("Database error", "operation", "list_products", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get products"})
		return
	}

	if products == nil {
		products = []database.ProductView{}
	}

	c.JSON(http.StatusOK, products)
}

// ReviewProduct records a human approve/reject decision for a clean
// product. Review rows accumulate; re-review overwrites the review status
// but never an earlier review row.
func (h *Handler) ReviewProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	var reviewStatus string
	switch req.Action {
	case database.ActionApprove:
		reviewStatus = database.ReviewApproved
	case database.ActionReject:
		reviewStatus = database.ReviewRejected
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be 'approve' or 'reject'"})
		return
	}

	cleanProduct, err := h.cleanRepo.GetCleanProduct(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_clean_product", "clean_product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review product"})
		return
	}
	if cleanProduct == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clean product not found"})
		return
	}

	if err := h.cleanRepo.SetReviewStatus(id, reviewStatus); err != nil {
		slog.Error("Database error", "operation", "set_review_status", "clean_product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review product"})
		return
	}

	if _, err := h.reviewRepo.CreateReview(database.Review{
		CleanProductID: id,
		Action:         req.Action,
		Reason:         req.Reason,
	}); err != nil {
		slog.Error("Database error", "operation", "create_review", "clean_product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Product " + reviewStatus,
		"product_id": id,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.productRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status": "healthy",
	}

	if count, err := h.productRepo.GetProductCount(); err == nil {
		health["products"] = count
	} else {
		health["status"] = "degraded"
	}

	c.JSON(http.StatusOK, health)
}

// APIRetryProduct returns a failed (or stuck) product to the pending state
// and schedules a fresh normalization attempt.
func (h *Handler) APIRetryProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := h.productRepo.GetProductByID(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retry product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := h.productRepo.UpdateProcessingStatus(id, database.StatusPending); err != nil {
		slog.Error("Database error", "operation", "update_processing_status", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retry product"})
		return
	}

	task := tasks.NewNormalizeProductTask(id, product.Name, h.productRepo, h.service)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue NormalizeProductTask", "product", product.Name, "error", err)
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Product scheduled for normalization",
		"product_id": id,
		"status":     database.StatusPending,
	})
}

// APIGetProductDetails returns a product together with its clean counterpart
// and the accumulated review trail.
func (h *Handler) APIGetProductDetails(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := h.productRepo.GetProductByID(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product details"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	details := gin.H{
		"id":                product.ID,
		"name":              product.Name,
		"description":       product.Description,
		"website":           product.Website,
		"logo":              product.Logo,
		"source_category":   product.SourceCategory,
		"processing_status": product.ProcessingStatus,
		"created_at":        product.CreatedAt,
		"updated_at":        product.UpdatedAt,
	}

	cleanProduct, err := h.cleanRepo.GetCleanProductByProductID(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_clean_product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product details"})
		return
	}

	if cleanProduct != nil {
		details["clean_product"] = gin.H{
			"id":            cleanProduct.ID,
			"description":   cleanProduct.Description,
			"category":      cleanProduct.Category,
			"review_status": cleanProduct.ReviewStatus,
			"created_at":    cleanProduct.CreatedAt,
		}

		reviews, err := h.reviewRepo.GetReviewsByCleanProductID(cleanProduct.ID)
		if err != nil {
			slog.Error("Database error", "operation", "get_reviews", "clean_product_id", cleanProduct.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product details"})
			return
		}

		reviewList := make([]gin.H, 0, len(reviews))
		for _, review := range reviews {
			reviewList = append(reviewList, gin.H{
				"id":         review.ID,
				"action":     review.Action,
				"reason":     review.Reason,
				"created_at": review.CreatedAt,
			})
		}
		details["reviews"] = reviewList
	}

	c.JSON(http.StatusOK, details)
}
