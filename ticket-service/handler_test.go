package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/arunvm123/ticketavailability/ticket-service/config"
	"github.com/arunvm123/ticketavailability/ticket-service/model"
	pkgErrors "github.com/arunvm123/ticketavailability/ticket-service/pkg/errors"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
	"github.com/arunvm123/ticketavailability/ticket-service/publisher"
	httpservice "github.com/arunvm123/ticketavailability/ticket-service/service/http"
	"github.com/arunvm123/ticketavailability/ticket-service/ticket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeAvailabilityService struct {
	tickets []model.AvailableTicket
	err     error

	calls   int
	eventID int
	ctx     context.Context
}

func (s *fakeAvailabilityService) GetAvailableTickets(ctx context.Context, eventID int) ([]model.AvailableTicket, error) {
	s.calls++
	s.eventID = eventID
	s.ctx = ctx
	return s.tickets, s.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.LookupEvent
	err    error
}

func (p *fakePublisher) PublishLookup(ctx context.Context, event model.LookupEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Close() error {
	return nil
}

func newRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r, err := SetupRouter(cfg, deps, logger.InitializeTestZapLogger())
	if err != nil {
		panic(err)
	}
	return r
}

func newTestRouter(svc *fakeAvailabilityService, pub publisher.LookupPublisher) *gin.Engine {
	return newRouter(&config.Config{}, Dependencies{Tickets: svc, Publisher: pub})
}

func doGet(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetAvailableTicketsSuccess(t *testing.T) {
	svc := &fakeAvailabilityService{tickets: []model.AvailableTicket{
		{SeatID: "111", SeatNumber: "X", RowNumber: "21", Price: 40, Section: model.Section{ID: "1", Description: "Balcony"}},
		{SeatID: "222", SeatNumber: "Y", RowNumber: "21", Price: 80, Section: model.Section{ID: "1", Description: "Balcony"}},
	}}
	pub := &fakePublisher{}

	w := doGet(newTestRouter(svc, pub), "/ticket/available/20000")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"seatId":"111","seatNumber":"X","rowNumber":"21","price":40,"section":{"id":"1","description":"Balcony"}},
		{"seatId":"222","seatNumber":"Y","rowNumber":"21","price":80,"section":{"id":"1","description":"Balcony"}}
	]`, w.Body.String())
	assert.Equal(t, 20000, svc.eventID)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.NotEmpty(t, event.LookupID)
	assert.Equal(t, 20000, event.EventID)
	assert.True(t, event.Succeeded)
	assert.Equal(t, http.StatusOK, event.StatusCode)
	assert.Equal(t, 2, event.TicketCount)
	assert.Equal(t, []string{"1"}, event.SectionIDs)
	assert.Empty(t, event.ErrorMessage)
}

func TestGetAvailableTicketsEmpty(t *testing.T) {
	svc := &fakeAvailabilityService{tickets: []model.AvailableTicket{}}

	w := doGet(newTestRouter(svc, &fakePublisher{}), "/ticket/available/1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetAvailableTicketsRejectsNonIntegerEventID(t *testing.T) {
	for _, path := range []string{"/ticket/available/abc", "/ticket/available/1.5", "/ticket/available/99999999999999999999"} {
		svc := &fakeAvailabilityService{}
		pub := &fakePublisher{}

		w := doGet(newTestRouter(svc, pub), path)

		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.JSONEq(t, `{"error":"bad_request","message":"Event id should be a positive integer"}`, w.Body.String())
		assert.Zero(t, svc.calls)
		assert.Empty(t, pub.events)
	}
}

func TestGetAvailableTicketsMapsFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "invalid event id",
			err:      pkgErrors.NewClientInputError("Event id should be greater than zero"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"bad_request","message":"Event id should be greater than zero"}`,
		},
		{
			name:     "price not found",
			err:      pkgErrors.NewJoinIntegrityError("Price not found"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"not_found","message":"Price not found"}`,
		},
		{
			name:     "upstream status",
			err:      pkgErrors.NewUpstreamStatusError(http.StatusServiceUnavailable),
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"bad_gateway","message":"Got bad response from external API with status: \"503\""}`,
		},
		{
			name:     "upstream unavailable",
			err:      pkgErrors.NewUpstreamUnavailableError(),
			wantCode: http.StatusGatewayTimeout,
			wantBody: `{"error":"gateway_timeout","message":"Failed to get the response from the external API"}`,
		},
		{
			name:     "request setup",
			err:      pkgErrors.NewUpstreamRequestSetupError(),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal_error","message":"Something bad happened while setting up the request to API"}`,
		},
		{
			name:     "untyped error",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal_error","message":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			w := doGet(newTestRouter(&fakeAvailabilityService{err: tt.err}, pub), "/ticket/available/7")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())

			require.Len(t, pub.events, 1)
			assert.False(t, pub.events[0].Succeeded)
			assert.Equal(t, tt.wantCode, pub.events[0].StatusCode)
			assert.NotEmpty(t, pub.events[0].ErrorMessage)
		})
	}
}

func TestGetAvailableTicketsDoesNotPublishInvalidEventIDs(t *testing.T) {
	svc := &fakeAvailabilityService{err: pkgErrors.NewClientInputError("Event id should be greater than zero")}
	pub := &fakePublisher{}

	w := doGet(newTestRouter(svc, pub), "/ticket/available/0")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.eventID)
	assert.Empty(t, pub.events)
}

func TestGetAvailableTicketsPublishFailureKeepsResponse(t *testing.T) {
	svc := &fakeAvailabilityService{tickets: []model.AvailableTicket{}}
	pub := &fakePublisher{err: errors.New("broker down")}

	w := doGet(newTestRouter(svc, pub), "/ticket/available/3")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetAvailableTicketsIgnoresClientCancellation(t *testing.T) {
	svc := &fakeAvailabilityService{tickets: []model.AvailableTicket{}}
	r := newTestRouter(svc, &fakePublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ticket/available/3", nil).WithContext(ctx)
	r.ServeHTTP(w, req)

	require.NotNil(t, svc.ctx)
	assert.NoError(t, svc.ctx.Err())
}

func TestHealthCheck(t *testing.T) {
	w := doGet(newTestRouter(&fakeAvailabilityService{}, &fakePublisher{}), "/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"service":"ticket-service"`)
}

func TestHealthCheckLimiterDown(t *testing.T) {
	deps := Dependencies{
		Tickets:   &fakeAvailabilityService{},
		Publisher: &fakePublisher{},
		Limiter:   &fakeLimiter{pingErr: errors.New("connection refused")},
	}

	w := doGet(newRouter(&config.Config{}, deps), "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"service_unavailable","message":"Redis ping failed"}`, w.Body.String())
}

// TestAvailableTicketsEndToEnd runs the router against a stubbed box office.
func TestAvailableTicketsEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("method") {
		case "GetPerformanceDetailWithDiscountingEx":
			_, _ = w.Write([]byte(`{"id":1,"error":null,"result":{"GetPerformanceDetailWithDiscountingExResult":{"Price":[
				{"zone_no":"1","price":"40.00"},
				{"zone_no":"2","price":"80.00"}
			]}}}`))
		case "GetSeatsBriefWithMOS":
			_, _ = w.Write([]byte(`{"id":1,"error":null,"result":{"GetSeatsBriefExResults":{
				"S":[{"D":"1,21,X,0,111,1"},{"D":"0,,,,,"},{"D":"1,21,Y,0,222,2"},{"D":"1,22,Z,8,333,1"}],
				"Section":[{"section":"1","section_desc":"Balcony"}]
			}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	l := logger.InitializeTestZapLogger()
	api := httpservice.NewHTTPTheatreAPI(upstream.URL+"/tessitura/ctglive", httpservice.LoginInfo{
		SessionKey:   "key",
		SourceNumber: "15686",
		ModeOfSale:   "6",
	}, upstream.Client(), l)

	r := newRouter(&config.Config{}, Dependencies{
		Tickets:   ticket.NewService(api, l),
		Publisher: publisher.NoopPublisher{},
	})

	w := doGet(r, "/ticket/available/20000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"seatId":"111","seatNumber":"X","rowNumber":"21","price":40,"section":{"id":"1","description":"Balcony"}},
		{"seatId":"222","seatNumber":"Y","rowNumber":"21","price":80,"section":{"id":"1","description":"Balcony"}}
	]`, w.Body.String())

	w = doGet(r, "/ticket/available/-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"Event id should be greater than zero"}`, w.Body.String())
}

func TestAvailableTicketsNonFinitePriceIsBadGateway(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("method") {
		case "GetPerformanceDetailWithDiscountingEx":
			_, _ = w.Write([]byte(`{"id":1,"error":null,"result":{"GetPerformanceDetailWithDiscountingExResult":{"Price":[{"zone_no":"1","price":"NaN"}]}}}`))
		default:
			_, _ = w.Write([]byte(`{"id":1,"error":null,"result":{"GetSeatsBriefExResults":{"S":[{"D":"1,21,X,0,111,1"}],"Section":[{"section":"1","section_desc":"Balcony"}]}}}`))
		}
	}))
	t.Cleanup(upstream.Close)

	l := logger.InitializeTestZapLogger()
	api := httpservice.NewHTTPTheatreAPI(upstream.URL, httpservice.LoginInfo{SessionKey: "key"}, upstream.Client(), l)
	pub := &fakePublisher{}

	w := doGet(newRouter(&config.Config{}, Dependencies{Tickets: ticket.NewService(api, l), Publisher: pub}), "/ticket/available/1")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"bad_gateway"`)
	require.Len(t, pub.events, 1)
	assert.False(t, pub.events[0].Succeeded)
}
