package models

import (
	"time"

	"github.com/google/uuid"
)

type VideoResult struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Model     ModelType `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

func NewVideoResult(url string, model ModelType) *VideoResult {
	return &VideoResult{
		ID:        uuid.New().String(),
		URL:       url,
		Model:     model,
		CreatedAt: time.Now(),
	}
}
