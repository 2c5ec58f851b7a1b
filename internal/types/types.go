package types

import "time"

// DemoPage is a generated single-file web page. Pages expire unless persisted.
type DemoPage struct {
	ID             string    `json:"id"`
	HTML           string    `json:"html"`
	Prompt         string    `json:"prompt"`
	UserID         *string   `json:"userId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	Persisted      bool      `json:"persisted"`
	IterationCount int       `json:"iterationCount"` // number of tweaks applied
}

// Expired reports whether the page is past its expiry and not persisted.
func (p *DemoPage) Expired(now time.Time) bool {
	return !p.Persisted && p.ExpiresAt.Before(now)
}

// PromptVersion is one row of the system prompt history.
type PromptVersion struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Label     *string   `json:"label"`
	Version   int       `json:"version"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type EmailCapture struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Push is an entry in the public changelog ("push log").
type Push struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Summary    string    `json:"summary"`
	CommitHash *string   `json:"commitHash,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
