package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kdimtricp/videoarena/internal/models"
)

// ErrAlreadyRated is returned when a result already has a rating on record.
// Each result may be rated at most once; the unique result_id constraint
// enforces it.
var ErrAlreadyRated = errors.New("result already rated")

type RatingRepository struct {
	db *DB
}

func NewRatingRepository(db *DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) AddRating(rating *models.Rating) error {
	result, err := r.db.conn.Exec(
		`INSERT INTO ratings (result_id, model, rating, prompt, timestamp) VALUES (?, ?, ?, ?, ?)`,
		rating.ResultID, string(rating.Model), rating.Rating, rating.Prompt, rating.Timestamp,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyRated
		}
		return fmt.Errorf("failed to insert rating: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		rating.ID = id
	}
	return nil
}

func (r *RatingRepository) GetAllRatings() ([]models.Rating, error) {
	rows, err := r.db.conn.Query(
		`SELECT id, result_id, model, rating, prompt, timestamp FROM ratings ORDER BY timestamp DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var rating models.Rating
		var model string
		if err := rows.Scan(&rating.ID, &rating.ResultID, &model, &rating.Rating, &rating.Prompt, &rating.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		rating.Model = models.ModelType(model)
		ratings = append(ratings, rating)
	}

	return ratings, rows.Err()
}

// HasRating reports whether a rating exists for the given result.
func (r *RatingRepository) HasRating(resultID string) (bool, error) {
	var count int
	err := r.db.conn.QueryRow(`SELECT COUNT(*) FROM ratings WHERE result_id = ?`, resultID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check rating: %w", err)
	}
	return count > 0, nil
}
