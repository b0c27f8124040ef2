package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/arunvm123/ticketavailability/ticket-service/config"
	"github.com/arunvm123/ticketavailability/ticket-service/model"
	pkgErrors "github.com/arunvm123/ticketavailability/ticket-service/pkg/errors"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
)

// requestID is sent as the id of every call; the box office does not use it to correlate.
const requestID = 1

// LoginInfo is the static credential sent with every box office call
type LoginInfo struct {
	SessionKey   string
	SourceNumber string
	ModeOfSale   string
}

type HTTPTheatreAPI struct {
	baseURL    string
	httpClient *http.Client
	loginInfo  LoginInfo
	l          logger.Logger
}

func NewHTTPTheatreAPI(baseURL string, loginInfo LoginInfo, httpClient *http.Client, l logger.Logger) *HTTPTheatreAPI {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 60 * time.Second,
		}
	}

	return &HTTPTheatreAPI{
		baseURL:    baseURL,
		httpClient: httpClient,
		loginInfo:  loginInfo,
		l:          l,
	}
}

// NewHTTPTheatreAPIWithConfig creates a box office client with connection pooling
func NewHTTPTheatreAPIWithConfig(cfg *config.TheatreAPI, l logger.Logger) *HTTPTheatreAPI {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     time.Duration(cfg.IdleConnTimeout) * time.Second,
		ForceAttemptHTTP2:   true,
	}

	loginInfo := LoginInfo{
		SessionKey:   cfg.SessionKey,
		SourceNumber: cfg.SourceNumber,
		ModeOfSale:   cfg.ModeOfSale,
	}

	return NewHTTPTheatreAPI(cfg.GetBaseURL(), loginInfo, &http.Client{
		Timeout:   time.Duration(cfg.RequestTimeout) * time.Second,
		Transport: transport,
	}, l)
}

// FetchPrices retrieves the price of every pricing zone of an event
func (s *HTTPTheatreAPI) FetchPrices(ctx context.Context, eventID int) ([]model.Price, error) {
	params := performanceDetailParams{
		SessionKey: s.loginInfo.SessionKey,
		EventID:    eventID,
		ModeOfSale: s.loginInfo.ModeOfSale,
	}

	var resp performanceDetailResult
	if err := s.call(ctx, methodPerformanceDetail, params, &resp); err != nil {
		return nil, err
	}

	if msg, failed := payloadError(resp.Error); failed {
		s.l.Warnf(ctx, "theatre api %s reported error for event %d: %s", methodPerformanceDetail, eventID, msg)
		return nil, pkgErrors.NewUpstreamDataError(fmt.Sprintf("Error from external API host: %s", msg))
	}

	if resp.Result == nil {
		return nil, decodeError(fmt.Errorf("missing result"))
	}

	prices, err := toPrices(resp.Result.Detail.Price)
	if err != nil {
		return nil, decodeError(err)
	}

	return prices, nil
}

// FetchLayout retrieves the seats and sections of an event
func (s *HTTPTheatreAPI) FetchLayout(ctx context.Context, eventID int) (*model.TheatreLayout, error) {
	params := seatsBriefParams{
		SessionKey:        s.loginInfo.SessionKey,
		ModeOfSale:        s.loginInfo.ModeOfSale,
		SourceNumber:      s.loginInfo.SourceNumber,
		PerformanceNumber: eventID,
		PackageNumber:     0,
		SummaryOnly:       "N",
		CalcPackageAlloc:  "Y",
		ReturnNonSeats:    "Y",
	}

	var resp seatsBriefResult
	if err := s.call(ctx, methodSeatsBrief, params, &resp); err != nil {
		return nil, err
	}

	if msg, failed := payloadError(resp.Error); failed {
		s.l.Warnf(ctx, "theatre api %s reported error for event %d: %s", methodSeatsBrief, eventID, msg)
		return nil, pkgErrors.NewUpstreamDataError(fmt.Sprintf("Error from external API host: %s", msg))
	}

	if resp.Result == nil {
		return nil, decodeError(fmt.Errorf("missing result"))
	}

	seats, err := toSeats(resp.Result.Brief.S)
	if err != nil {
		return nil, decodeError(err)
	}

	return &model.TheatreLayout{
		Seats:    seats,
		Sections: toSections(resp.Result.Brief.Section),
	}, nil
}

// call sends GET {base}?id=&method=&params=base64(json(params)) and decodes the body into out.
func (s *HTTPTheatreAPI) call(ctx context.Context, method string, params any, out any) error {
	req, err := s.newRequest(ctx, method, params)
	if err != nil {
		s.l.Errorf(ctx, "failed to create %s request: %v", method, err)
		return pkgErrors.NewUpstreamRequestSetupError()
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.l.Warnf(ctx, "theatre api %s gave no response: %v", method, err)
		return pkgErrors.NewUpstreamUnavailableError()
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		s.l.Warnf(ctx, "theatre api %s responded with status %d", method, resp.StatusCode)
		return pkgErrors.NewUpstreamStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.l.Warnf(ctx, "theatre api %s response was cut short: %v", method, err)
		return pkgErrors.NewUpstreamUnavailableError()
	}

	s.l.Debugf(ctx, "theatre api %s responded in %s", method, time.Since(start))

	if err := json.Unmarshal(body, out); err != nil {
		return decodeError(err)
	}

	return nil
}

func (s *HTTPTheatreAPI) newRequest(ctx context.Context, method string, params any) (*http.Request, error) {
	blob, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}

	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	query := u.Query()
	query.Set("id", strconv.Itoa(requestID))
	query.Set("method", method)
	query.Set("params", base64.StdEncoding.EncodeToString(blob))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func decodeError(err error) error {
	return pkgErrors.NewUpstreamDataError(fmt.Sprintf("Failed to decode response from external API: %v", err))
}
