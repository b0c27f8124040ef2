package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/arunvm123/ticketavailability/ticket-service/limiter"
	"github.com/arunvm123/ticketavailability/ticket-service/model"
	pkgErrors "github.com/arunvm123/ticketavailability/ticket-service/pkg/errors"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
	"github.com/arunvm123/ticketavailability/ticket-service/publisher"
	"github.com/arunvm123/ticketavailability/ticket-service/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	serviceName       = "ticket-service"
	healthPingTimeout = 2 * time.Second
)

type TicketHandler struct {
	tickets   service.AvailabilityService
	publisher publisher.LookupPublisher
	limiter   limiter.RateLimiter
	l         logger.Logger
}

// NewTicketHandler builds the handler. rateLimiter may be nil when rate limiting is disabled.
func NewTicketHandler(tickets service.AvailabilityService, lookupPublisher publisher.LookupPublisher, rateLimiter limiter.RateLimiter, l logger.Logger) *TicketHandler {
	return &TicketHandler{
		tickets:   tickets,
		publisher: lookupPublisher,
		limiter:   rateLimiter,
		l:         l,
	}
}

// GetAvailableTickets returns the purchasable seats of an event
func (h *TicketHandler) GetAvailableTickets(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   statusSlug(http.StatusBadRequest),
			Message: "Event id should be a positive integer",
		})
		return
	}

	// The upstream calls run to completion even if the client goes away.
	ctx := context.WithoutCancel(c.Request.Context())
	ctx = h.l.With(ctx, "event_id", eventID)

	start := time.Now()
	tickets, err := h.tickets.GetAvailableTickets(ctx, eventID)
	if err != nil {
		code, message := pkgErrors.ParseHTTPError(err)
		if code >= http.StatusInternalServerError {
			h.l.Errorf(ctx, "availability lookup failed: %v", err)
		}

		h.publishLookup(ctx, eventID, start, code, nil, message)
		c.JSON(code, model.ErrorResponse{
			Error:   statusSlug(code),
			Message: message,
		})
		return
	}

	h.publishLookup(ctx, eventID, start, http.StatusOK, tickets, "")
	c.JSON(http.StatusOK, tickets)
}

// HealthCheck handles health check endpoint
func (h *TicketHandler) HealthCheck(c *gin.Context) {
	if h.limiter != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		if err := h.limiter.Ping(ctx); err != nil {
			h.l.Warnf(ctx, "redis ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
				Error:   "service_unavailable",
				Message: "Redis ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now(),
	})
}

// publishLookup records the outcome of a lookup. Invalid event ids are not recorded.
func (h *TicketHandler) publishLookup(ctx context.Context, eventID int, start time.Time, code int, tickets []model.AvailableTicket, message string) {
	if eventID < 1 {
		return
	}

	event := model.LookupEvent{
		LookupID:     uuid.NewString(),
		EventID:      eventID,
		Succeeded:    code == http.StatusOK,
		StatusCode:   code,
		TicketCount:  len(tickets),
		SectionIDs:   model.SectionIDsOf(tickets),
		ErrorMessage: message,
		DurationMs:   time.Since(start).Milliseconds(),
		RequestedAt:  start.UTC(),
	}

	if err := h.publisher.PublishLookup(ctx, event); err != nil {
		h.l.Warnf(ctx, "failed to publish lookup: %v", err)
	}
}

func statusSlug(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusBadGateway:
		return "bad_gateway"
	case http.StatusGatewayTimeout:
		return "gateway_timeout"
	default:
		return "internal_error"
	}
}
