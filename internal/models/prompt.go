package models

import "fmt"

type CustomPrompt struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

func (p *CustomPrompt) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if p.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	return nil
}
