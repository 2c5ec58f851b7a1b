package demo

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPrompt   = fmt.Errorf("prompt must be between 1 and %d characters", MaxPromptLength)
	ErrSessionExpired  = errors.New("your session has expired, generate a new page to keep editing")
	ErrNotOwner        = errors.New("you can only edit pages you created")
	ErrNotFound        = errors.New("demo page not found")
	ErrExpired         = errors.New("this demo page has expired")
	ErrTweaksExhausted = errors.New("you've used all your tweaks for this page")
)

// ModerationError is returned when the prompt was flagged.
type ModerationError struct {
	Reason string
}

func (e *ModerationError) Error() string { return e.Reason }

// RateLimitError is returned when the caller is over the generation limit.
type RateLimitError struct {
	ResetInMinutes int
	Max            int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("You've reached the limit of %d pages per hour. Try again in %d minutes.", e.Max, e.ResetInMinutes)
}
