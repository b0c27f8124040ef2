package ticket

import (
	"context"

	"github.com/arunvm123/ticketavailability/ticket-service/model"
	pkgErrors "github.com/arunvm123/ticketavailability/ticket-service/pkg/errors"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
	"github.com/arunvm123/ticketavailability/ticket-service/service"
	"golang.org/x/sync/errgroup"
)

const (
	msgInvalidEventID  = "Event id should be greater than zero"
	msgPriceNotFound   = "Price not found"
	msgSectionNotFound = "Section not found"
)

type Service struct {
	theatreAPI service.TheatreAPI
	l          logger.Logger
}

func NewService(theatreAPI service.TheatreAPI, l logger.Logger) *Service {
	return &Service{
		theatreAPI: theatreAPI,
		l:          l,
	}
}

// GetAvailableTickets returns the purchasable seats of an event with their price and section.
// Upstream failures are returned unchanged. If any available seat references an unknown
// zone or section the whole request fails.
func (s *Service) GetAvailableTickets(ctx context.Context, eventID int) ([]model.AvailableTicket, error) {
	if eventID < 1 {
		return nil, pkgErrors.NewClientInputError(msgInvalidEventID)
	}

	var (
		prices               []model.Price
		layout               *model.TheatreLayout
		pricesErr, layoutErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		prices, pricesErr = s.theatreAPI.FetchPrices(ctx, eventID)
		return pricesErr
	})
	g.Go(func() error {
		layout, layoutErr = s.theatreAPI.FetchLayout(ctx, eventID)
		return layoutErr
	})

	if err := g.Wait(); err != nil {
		// Prices are reported first when both calls fail.
		if pricesErr != nil {
			return nil, pricesErr
		}
		return nil, layoutErr
	}

	tickets, err := assemble(prices, layout.Seats, layout.Sections)
	if err != nil {
		s.l.Warnf(ctx, "event %d layout does not resolve: %v", eventID, err)
		return nil, err
	}

	s.l.Debugf(ctx, "event %d has %d available tickets out of %d seats", eventID, len(tickets), len(layout.Seats))
	return tickets, nil
}

func assemble(prices []model.Price, seats []model.Seat, sections []model.Section) ([]model.AvailableTicket, error) {
	priceByZoneID := make(map[string]model.Price, len(prices))
	for _, p := range prices {
		priceByZoneID[p.ZoneID] = p
	}

	sectionByID := make(map[string]model.Section, len(sections))
	for _, sec := range sections {
		sectionByID[sec.ID] = sec
	}

	tickets := make([]model.AvailableTicket, 0)
	for _, seat := range seats {
		if !seat.IsAvailable() {
			continue
		}

		price, ok := priceByZoneID[seat.ZoneID]
		if !ok {
			return nil, pkgErrors.NewJoinIntegrityError(msgPriceNotFound)
		}

		section, ok := sectionByID[seat.SectionID]
		if !ok {
			return nil, pkgErrors.NewJoinIntegrityError(msgSectionNotFound)
		}

		tickets = append(tickets, model.AvailableTicket{
			SeatID:     seat.ID,
			SeatNumber: seat.SeatNumber,
			RowNumber:  seat.RowNumber,
			Price:      price.Price,
			Section:    section,
		})
	}

	return tickets, nil
}
