package postgres

import (
	"context"
	"fmt"

	"github.com/arunvm123/ticketavailability/ticket-service/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresLookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(databaseURL string) (*PostgresLookupRepository, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate the lookup table
	if err := db.AutoMigrate(&model.Lookup{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PostgresLookupRepository{db: db}, nil
}

// CreateLookup stores a lookup. Redelivered events are ignored by id.
func (r *PostgresLookupRepository) CreateLookup(req model.CreateLookupRequest) (*model.Lookup, error) {
	lookup := newLookup(req)

	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(lookup).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup: %w", err)
	}

	return lookup, nil
}

// Ping checks the database connection
func (r *PostgresLookupRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

func newLookup(req model.CreateLookupRequest) *model.Lookup {
	id := req.LookupID
	if id == "" {
		id = uuid.NewString()
	}

	var errorMessage *string
	if req.ErrorMessage != "" {
		msg := req.ErrorMessage
		errorMessage = &msg
	}

	return &model.Lookup{
		ID:           id,
		EventID:      req.EventID,
		Succeeded:    req.Succeeded,
		StatusCode:   req.StatusCode,
		TicketCount:  req.TicketCount,
		SectionIDs:   pq.StringArray(req.SectionIDs),
		ErrorMessage: errorMessage,
		DurationMs:   req.DurationMs,
		RequestedAt:  req.RequestedAt,
	}
}
