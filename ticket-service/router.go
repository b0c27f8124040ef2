package main

import (
	"context"
	"fmt"
	"time"

	"github.com/arunvm123/ticketavailability/ticket-service/config"
	"github.com/arunvm123/ticketavailability/ticket-service/limiter"
	"github.com/arunvm123/ticketavailability/ticket-service/limiter/redis"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
	"github.com/arunvm123/ticketavailability/ticket-service/publisher"
	"github.com/arunvm123/ticketavailability/ticket-service/publisher/kafka"
	"github.com/arunvm123/ticketavailability/ticket-service/service"
	httpservice "github.com/arunvm123/ticketavailability/ticket-service/service/http"
	"github.com/arunvm123/ticketavailability/ticket-service/ticket"
	"github.com/gin-gonic/gin"
)

// Dependencies are the collaborators the router wires into its handlers
type Dependencies struct {
	Tickets   service.AvailabilityService
	Publisher publisher.LookupPublisher
	Limiter   limiter.RateLimiter
}

// NewDependencies builds the production dependencies. The returned function releases them.
func NewDependencies(cfg *config.Config, l logger.Logger) (Dependencies, func(), error) {
	// Initialize box office client with connection pooling
	theatreAPI := httpservice.NewHTTPTheatreAPIWithConfig(&cfg.TheatreAPI, l)

	deps := Dependencies{
		Tickets:   ticket.NewService(theatreAPI, l),
		Publisher: publisher.NoopPublisher{},
	}

	if cfg.RateLimit.Enabled {
		client, err := redis.NewRedisClient(cfg.Redis.GetRedisURL(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return Dependencies{}, nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
		}
		deps.Limiter = redis.NewRedisRateLimiter(client, cfg.RateLimit.Requests,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	}

	if cfg.Kafka.Enabled {
		deps.Publisher = kafka.NewKafkaLookupPublisher(&cfg.Kafka, l)
	}

	closeFn := func() {
		if err := deps.Publisher.Close(); err != nil {
			l.Errorf(context.Background(), "Failed to close lookup publisher: %v", err)
		}
	}

	return deps, closeFn, nil
}

func SetupRouter(cfg *config.Config, deps Dependencies, l logger.Logger) (*gin.Engine, error) {
	ticketHandler := NewTicketHandler(deps.Tickets, deps.Publisher, deps.Limiter, l)

	r := gin.New()

	// Rate limiting keys on the client address, so forwarded headers are only
	// honoured from configured proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware(l))
	r.Use(LoggingMiddleware(l))
	r.Use(CORSMiddleware())

	// Health check endpoint (not rate limited)
	r.GET("/health", ticketHandler.HealthCheck)

	tickets := r.Group("/ticket")
	if deps.Limiter != nil {
		tickets.Use(RateLimitMiddleware(deps.Limiter, l))
	}

	tickets.GET("/available/:eventId", ticketHandler.GetAvailableTickets)

	return r, nil
}
