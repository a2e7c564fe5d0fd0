package database

import (
	"fmt"
)

var _ ReviewRepository = (*reviewRepository)(nil)

type reviewRepository struct {
	db *DB
}

func NewReviewRepository(db *DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) CreateReview(review Review) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO reviews (clean_product_id, action, reason)
		VALUES (?, ?, ?)
	`, review.CleanProductID, review.Action, review.Reason)
	if err != nil {
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted review id: %w", err)
	}

	return id, nil
}

func (r *reviewRepository) GetReviewsByCleanProductID(cleanProductID int64) ([]Review, error) {
	rows, err := r.db.Query(`
		SELECT id, clean_product_id, action, reason, created_at
		FROM reviews
		WHERE clean_product_id = ?
		ORDER BY id
	`, cleanProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		err := rows.Scan(&review.ID, &review.CleanProductID, &review.Action, &review.Reason, &review.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}

	return reviews, nil
}
