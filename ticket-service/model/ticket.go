package model

import "time"

// ============================================================================
// UPSTREAM RECORDS (decoded from the box office wire format)
// ============================================================================

// Price is the price of every seat in a pricing zone
type Price struct {
	ZoneID string
	Price  float64
}

// AvailableSeatStatus is the box office status code of a purchasable seat
const AvailableSeatStatus = "0"

// Seat is a single seat of an event's layout. ZoneID and SectionID reference
// Price and Section records; the box office does not guarantee they resolve.
type Seat struct {
	ID         string
	StatusCode string
	ZoneID     string
	RowNumber  string
	SeatNumber string
	SectionID  string
}

func (s Seat) IsAvailable() bool {
	return s.StatusCode == AvailableSeatStatus
}

// TheatreLayout holds the seats and sections of an event
type TheatreLayout struct {
	Seats    []Seat
	Sections []Section
}

// ============================================================================
// API DATA TRANSFER OBJECTS (External - JSON tags for HTTP)
// ============================================================================

// Section is a physical seating area
type Section struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// AvailableTicket is a purchasable seat with its resolved price and section
type AvailableTicket struct {
	SeatID     string  `json:"seatId"`
	SeatNumber string  `json:"seatNumber"`
	RowNumber  string  `json:"rowNumber"`
	Price      float64 `json:"price"`
	Section    Section `json:"section"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
