package repository

import (
	"context"

	"github.com/arunvm123/ticketavailability/ticket-service/model"
)

// LookupRepository defines the interface for lookup audit operations
type LookupRepository interface {
	CreateLookup(req model.CreateLookupRequest) (*model.Lookup, error)

	// Readiness check
	Ping(ctx context.Context) error
}
