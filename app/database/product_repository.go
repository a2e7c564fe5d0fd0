package database

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var _ ProductRepository = (*productRepository)(nil)

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) CreateProduct(p Product) (int64, bool, error) {
	existing, err := r.GetProductByName(p.Name)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check existing product: %w", err)
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	result, err := r.db.Exec(`
		INSERT INTO products (name, description, website, logo, source_category, processing_status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Name, p.Description, p.Website, p.Logo, p.SourceCategory, StatusPending)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get inserted product id: %w", err)
	}

	return id, true, nil
}

const productColumns = `id, name, description, website, logo, source_category, processing_status, created_at, updated_at`

func (r *productRepository) scanProduct(row *sql.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Website, &p.Logo,
		&p.SourceCategory, &p.ProcessingStatus, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetProductByName(name string) (*Product, error) {
	row := r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE name = ?`, name)

	p, err := r.scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get product by name: %w", err)
	}
	return p, nil
}

func (r *productRepository) GetProductByID(id int64) (*Product, error) {
	row := r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := r.scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}
	return p, nil
}

func (r *productRepository) GetProductsByIDs(ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(`
		SELECT `+productColumns+`
		FROM products
		WHERE id IN (`+placeholders+`)
		ORDER BY id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by ids: %w", err)
	}
	defer rows.Close()

	return r.collectProducts(rows)
}

func (r *productRepository) GetPendingProducts(limit int) ([]Product, error) {
	rows, err := r.db.Query(`
		SELECT `+productColumns+`
		FROM products
		WHERE processing_status = ?
		ORDER BY id
		LIMIT ?
	`, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending products: %w", err)
	}
	defer rows.Close()

	return r.collectProducts(rows)
}

func (r *productRepository) collectProducts(rows *sql.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Website, &p.Logo,
			&p.SourceCategory, &p.ProcessingStatus, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, nil
}

func (r *productRepository) GetProductCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get product count: %w", err)
	}
	return count, nil
}

func (r *productRepository) UpdateProcessingStatus(id int64, status string) error {
	_, err := r.db.Exec(`
		UPDATE products
		SET processing_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update processing status: %w", err)
	}
	return nil
}

func (r *productRepository) ClaimPending(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var claimed []int64
	for _, id := range ids {
		result, err := tx.Exec(`
			UPDATE products
			SET processing_status = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND processing_status = ?
		`, StatusProcessing, id, StatusPending)
		if err != nil {
			return nil, fmt.Errorf("failed to claim product %d: %w", id, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get affected rows: %w", err)
		}
		if affected > 0 {
			claimed = append(claimed, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return claimed, nil
}

func (r *productRepository) CompleteBatch(results []NormalizedProduct) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, result := range results {
		_, err := tx.Exec(`
			INSERT INTO clean_products (product_id, description, category, review_status)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (product_id) DO UPDATE SET
				description = excluded.description,
				category = excluded.category,
				updated_at = CURRENT_TIMESTAMP
		`, result.ProductID, result.Description, result.Category, ReviewPending)
		if err != nil {
			return fmt.Errorf("failed to insert clean product for %d: %w", result.ProductID, err)
		}

		_, err = tx.Exec(`
			UPDATE products
			SET processing_status = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, StatusCompleted, result.ProductID)
		if err != nil {
			return fmt.Errorf("failed to mark product %d completed: %w", result.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch completion: %w", err)
	}

	return nil
}

func (r *productRepository) FailBatch(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		_, err := tx.Exec(`
			UPDATE products
			SET processing_status = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, StatusFailed, id)
		if err != nil {
			return fmt.Errorf("failed to mark product %d failed: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch failure: %w", err)
	}

	return nil
}

func (r *productRepository) ListProducts(filter ProductFilter) ([]ProductView, error) {
	builder := sq.Select(
		"p.id", "p.name", "p.description", "p.website", "p.logo",
		"p.processing_status", "p.created_at", "p.updated_at",
		"c.id", "c.description", "c.category", "c.review_status",
	).
		From("products p").
		LeftJoin("clean_products c ON c.product_id = p.id").
		OrderBy("p.id")

	if filter.ProcessingStatus != "" {
		builder = builder.Where(sq.Eq{"p.processing_status": filter.ProcessingStatus})
	}
	if filter.ReviewStatus != "" {
		builder = builder.Where(sq.Eq{"c.review_status": filter.ReviewStatus})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	builder = builder.Limit(uint64(limit))
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build product listing query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var views []ProductView
	for rows.Next() {
		var view ProductView
		var updatedAt sql.NullTime
		var cleanID sql.NullInt64
		var cleanDescription, category, reviewStatus sql.NullString

		err := rows.Scan(
			&view.ID, &view.Name, &view.Description, &view.Website, &view.Logo,
			&view.ProcessingStatus, &view.CreatedAt, &updatedAt,
			&cleanID, &cleanDescription, &category, &reviewStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product view row: %w", err)
		}

		if updatedAt.Valid {
			view.UpdatedAt = &updatedAt.Time
		}
		if cleanID.Valid {
			view.CleanProductID = &cleanID.Int64
		}
		if cleanDescription.Valid {
			view.CleanDescription = &cleanDescription.String
		}
		if category.Valid {
			view.Category = &category.String
		}
		// Products without a clean counterpart are reported as pending review
		view.ReviewStatus = ReviewPending
		if reviewStatus.Valid {
			view.ReviewStatus = reviewStatus.String
		}

		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product view rows: %w", err)
	}

	return views, nil
}

func (r *productRepository) GetStats() (*Stats, error) {
	stats := &Stats{}

	rows, err := r.db.Query(`
		SELECT processing_status, COUNT(*)
		FROM products
		GROUP BY processing_status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get product stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan product stats row: %w", err)
		}

		stats.Products.Total += count
		switch status {
		case StatusPending:
			stats.Products.Pending = count
		case StatusProcessing:
			stats.Products.Processing = count
		case StatusCompleted:
			stats.Products.Completed = count
		case StatusFailed:
			stats.Products.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product stats rows: %w", err)
	}

	cleanRows, err := r.db.Query(`
		SELECT review_status, COUNT(*)
		FROM clean_products
		GROUP BY review_status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get clean product stats: %w", err)
	}
	defer cleanRows.Close()

	for cleanRows.Next() {
		var status string
		var count int
		if err := cleanRows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan clean product stats row: %w", err)
		}

		stats.CleanProducts.Total += count
		switch status {
		case ReviewPending:
			stats.CleanProducts.PendingReview = count
		case ReviewApproved:
			stats.CleanProducts.Approved = count
		case ReviewRejected:
			stats.CleanProducts.Rejected = count
		}
	}
	if err := cleanRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clean product stats rows: %w", err)
	}

	return stats, nil
}
