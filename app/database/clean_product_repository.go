package database

import (
	"database/sql"
	"fmt"
)

var _ CleanProductRepository = (*cleanProductRepository)(nil)

type cleanProductRepository struct {
	db *DB
}

func NewCleanProductRepository(db *DB) CleanProductRepository {
	return &cleanProductRepository{db: db}
}

const cleanProductColumns = `id, product_id, description, category, review_status, created_at, updated_at`

func (r *cleanProductRepository) scanCleanProduct(row *sql.Row) (*CleanProduct, error) {
	var c CleanProduct
	err := row.Scan(
		&c.ID, &c.ProductID, &c.Description, &c.Category,
		&c.ReviewStatus, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cleanProductRepository) GetCleanProduct(id int64) (*CleanProduct, error) {
	row := r.db.QueryRow(`SELECT `+cleanProductColumns+` FROM clean_products WHERE id = ?`, id)

	c, err := r.scanCleanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get clean product: %w", err)
	}
	return c, nil
}

func (r *cleanProductRepository) GetCleanProductByProductID(productID int64) (*CleanProduct, error) {
	row := r.db.QueryRow(`SELECT `+cleanProductColumns+` FROM clean_products WHERE product_id = ?`, productID)

	c, err := r.scanCleanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get clean product by product id: %w", err)
	}
	return c, nil
}

func (r *cleanProductRepository) SetReviewStatus(id int64, status string) error {
	result, err := r.db.Exec(`
		UPDATE clean_products
		SET review_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set review status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("clean product %d not found", id)
	}

	return nil
}
