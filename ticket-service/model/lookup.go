package model

import (
	"time"

	"github.com/lib/pq"
)

// ============================================================================
// DATABASE ENTITIES (Internal - GORM only, no JSON tags)
// ============================================================================

// Lookup is the audit record of one availability request
type Lookup struct {
	ID           string         `gorm:"primary_key;type:uuid"`
	EventID      int            `gorm:"not null;index"`
	Succeeded    bool           `gorm:"not null"`
	StatusCode   int            `gorm:"not null"`
	TicketCount  int            `gorm:"not null;default:0"`
	SectionIDs   pq.StringArray `gorm:"type:text[]"`
	ErrorMessage *string        `gorm:"type:text"`
	DurationMs   int64          `gorm:"not null"`
	RequestedAt  time.Time      `gorm:"not null;index"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
}

// TableName sets the table name for GORM
func (Lookup) TableName() string {
	return "availability_lookups"
}

// ============================================================================
// REPOSITORY DATA TRANSFER OBJECTS (Internal - no JSON tags)
// ============================================================================

// CreateLookupRequest represents the data needed to store a lookup
type CreateLookupRequest struct {
	LookupID     string
	EventID      int
	Succeeded    bool
	StatusCode   int
	TicketCount  int
	SectionIDs   []string
	ErrorMessage string
	DurationMs   int64
	RequestedAt  time.Time
}

// ============================================================================
// KAFKA MESSAGE STRUCTURES
// ============================================================================

// LookupEvent is published to the lookup topic after every availability request
type LookupEvent struct {
	LookupID     string    `json:"lookup_id"`
	EventID      int       `json:"event_id"`
	Succeeded    bool      `json:"succeeded"`
	StatusCode   int       `json:"status_code"`
	TicketCount  int       `json:"ticket_count"`
	SectionIDs   []string  `json:"section_ids,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	RequestedAt  time.Time `json:"requested_at"`
}

// ============================================================================
// CONVERSION METHODS
// ============================================================================

// ToCreateLookupRequest converts a consumed lookup event into a repository request
func (e *LookupEvent) ToCreateLookupRequest() CreateLookupRequest {
	return CreateLookupRequest{
		LookupID:     e.LookupID,
		EventID:      e.EventID,
		Succeeded:    e.Succeeded,
		StatusCode:   e.StatusCode,
		TicketCount:  e.TicketCount,
		SectionIDs:   e.SectionIDs,
		ErrorMessage: e.ErrorMessage,
		DurationMs:   e.DurationMs,
		RequestedAt:  e.RequestedAt,
	}
}

// SectionIDsOf returns the distinct section ids of tickets in first-seen order
func SectionIDsOf(tickets []AvailableTicket) []string {
	seen := make(map[string]struct{}, len(tickets))
	ids := make([]string, 0)
	for _, t := range tickets {
		if _, ok := seen[t.Section.ID]; ok {
			continue
		}
		seen[t.Section.ID] = struct{}{}
		ids = append(ids, t.Section.ID)
	}
	return ids
}
