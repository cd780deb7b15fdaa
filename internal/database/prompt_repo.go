package database

import (
	"fmt"

	"github.com/kdimtricp/videoarena/internal/models"
)

type PromptRepository struct {
	db *DB
}

func NewPromptRepository(db *DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) AddPrompt(prompt *models.CustomPrompt) error {
	result, err := r.db.conn.Exec(
		`INSERT INTO prompts (title, prompt) VALUES (?, ?)`,
		prompt.Title, prompt.Prompt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prompt: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		prompt.ID = id
	}
	return nil
}

func (r *PromptRepository) GetAllPrompts() ([]models.CustomPrompt, error) {
	rows, err := r.db.conn.Query(`SELECT id, title, prompt FROM prompts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []models.CustomPrompt
	for rows.Next() {
		var prompt models.CustomPrompt
		if err := rows.Scan(&prompt.ID, &prompt.Title, &prompt.Prompt); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, prompt)
	}

	return prompts, rows.Err()
}

func (r *PromptRepository) DeletePrompt(id int64) error {
	result, err := r.db.conn.Exec(`DELETE FROM prompts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("prompt not found")
	}
	return nil
}
