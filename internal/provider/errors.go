package provider

import (
	"fmt"
	"time"
)

// QuotaExceededError signals that the provider rejected the job because the
// caller's free usage allotment is depleted. The orchestrator treats it as
// retryable once the user agrees to spend their own credential.
type QuotaExceededError struct {
	Message string
}

func (e *QuotaExceededError) Error() string {
	if e.Message == "" {
		return "provider quota exceeded"
	}
	return e.Message
}

// TimeoutError is returned when a job does not reach a terminal state within
// the provider's polling budget.
type TimeoutError struct {
	Provider string
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: video generation timed out after %s", e.Provider, e.Elapsed)
}

// TerminalError carries a remote-reported failure. The provider's message is
// preserved verbatim when one is available.
type TerminalError struct {
	Provider string
	Message  string
}

func (e *TerminalError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: video generation failed without a specific error", e.Provider)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
