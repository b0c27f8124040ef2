package service

import (
	"context"

	"github.com/arunvm123/ticketavailability/ticket-service/model"
)

// TheatreAPI defines the interface for reading from the box office.
// Failures are returned as *errors.HTTPError values.
type TheatreAPI interface {
	// FetchPrices retrieves the price of every pricing zone of an event
	FetchPrices(ctx context.Context, eventID int) ([]model.Price, error)

	// FetchLayout retrieves the seats and sections of an event
	FetchLayout(ctx context.Context, eventID int) (*model.TheatreLayout, error)
}

// AvailabilityService defines the interface for assembling the purchasable seats of an event
type AvailabilityService interface {
	GetAvailableTickets(ctx context.Context, eventID int) ([]model.AvailableTicket, error)
}
