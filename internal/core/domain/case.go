package domain

import (
	"strings"
	"time"
)

// Case groups the documents of one legal matter.
type Case struct {
	ID          string
	Title       string
	Description string

	// DocumentsCount and CitationsCount are maintained by the service.
	DocumentsCount int
	CitationsCount int

	CreatedAt time.Time
}

// Validate checks a case record received from the service.
func (c Case) Validate() error {
	if c.ID == "" {
		return invalid("id", "is required")
	}
	if c.DocumentsCount < 0 {
		return invalid("uploadedDocumentsCount", "must not be negative")
	}
	if c.CitationsCount < 0 {
		return invalid("citationsCount", "must not be negative")
	}
	return nil
}

// NewCase is the request to create a case.
type NewCase struct {
	Title       string
	Description string
}

// Validate checks that the case has a title.
func (c NewCase) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return invalid("title", "is required")
	}
	return nil
}

// CaseUpdate changes the fields that are set and leaves the rest alone.
type CaseUpdate struct {
	Title       *string
	Description *string
}

// Validate rejects empty updates and blank titles.
func (u CaseUpdate) Validate() error {
	if u.Title == nil && u.Description == nil {
		return invalid("case", "nothing to update")
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return invalid("title", "must not be blank")
	}
	return nil
}
