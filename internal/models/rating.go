package models

import (
	"fmt"
	"time"
)

type Rating struct {
	ID        int64     `json:"id"`
	ResultID  string    `json:"result_id"`
	Model     ModelType `json:"model"`
	Rating    int       `json:"rating"`
	Prompt    string    `json:"prompt"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRating(resultID string, model ModelType, rating int, prompt string) *Rating {
	return &Rating{
		ResultID:  resultID,
		Model:     model,
		Rating:    rating,
		Prompt:    prompt,
		Timestamp: time.Now(),
	}
}

func (r *Rating) Validate() error {
	if r.ResultID == "" {
		return fmt.Errorf("result id is required")
	}
	if !r.Model.Valid() {
		return fmt.Errorf("unknown model: %s", r.Model)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", r.Rating)
	}
	return nil
}
