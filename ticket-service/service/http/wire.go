package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arunvm123/ticketavailability/ticket-service/model"
)

const (
	methodPerformanceDetail = "GetPerformanceDetailWithDiscountingEx"
	methodSeatsBrief        = "GetSeatsBriefWithMOS"

	// A seat record starting with this marks a position without seats.
	noSeatMarker = "0"

	seatRecordFields = 6
)

// Field names and order below are part of the box office contract.

type performanceDetailParams struct {
	SessionKey string `json:"SessionKey"`
	EventID    int    `json:"iPerf_no"`
	ModeOfSale string `json:"iModeOfSale"`
}

type seatsBriefParams struct {
	SessionKey        string `json:"sSessionKey"`
	ModeOfSale        string `json:"iModeOfSale"`
	SourceNumber      string `json:"iSourceNumber"`
	PerformanceNumber int    `json:"iPerformanceNumber"`
	PackageNumber     int    `json:"iPackageNumber"`
	SummaryOnly       string `json:"cSummaryOnly"`
	CalcPackageAlloc  string `json:"cCalcPackageAlloc"`
	ReturnNonSeats    string `json:"cReturnNonSeats"`
}

// wireString accepts a JSON string or number and keeps its text form.
type wireString string

func (s *wireString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = wireString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = wireString(num.String())
	return nil
}

type priceResult struct {
	ZoneNo wireString `json:"zone_no"`
	Price  wireString `json:"price"`
}

type performanceDetailResult struct {
	Error  json.RawMessage `json:"error"`
	Result *struct {
		Detail struct {
			Price []priceResult `json:"Price"`
		} `json:"GetPerformanceDetailWithDiscountingExResult"`
	} `json:"result"`
}

type seatResult struct {
	D string `json:"D"`
}

type sectionResult struct {
	Section     wireString `json:"section"`
	SectionDesc string     `json:"section_desc"`
}

type seatsBriefResult struct {
	Error  json.RawMessage `json:"error"`
	Result *struct {
		Brief struct {
			S       []seatResult    `json:"S"`
			Section []sectionResult `json:"Section"`
		} `json:"GetSeatsBriefExResults"`
	} `json:"result"`
}

// payloadError reports whether the box office flagged the response as failed.
// Any value other than null, false, 0 or "" counts as an error.
func payloadError(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return "", false
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg, true
	}
	return string(raw), true
}

func toPrices(results []priceResult) ([]model.Price, error) {
	prices := make([]model.Price, 0, len(results))
	for _, p := range results {
		value, err := strconv.ParseFloat(strings.TrimSpace(string(p.Price)), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("invalid price %q for zone %q", p.Price, p.ZoneNo)
		}
		prices = append(prices, model.Price{
			ZoneID: string(p.ZoneNo),
			Price:  value,
		})
	}
	return prices, nil
}

// toSeats decodes positional seat records of the form
// sectionId,rowNumber,seatNumber,statusCode,id,zoneId.
func toSeats(results []seatResult) ([]model.Seat, error) {
	seats := make([]model.Seat, 0, len(results))
	for i, s := range results {
		if strings.HasPrefix(s.D, noSeatMarker) {
			continue
		}

		fields := strings.Split(s.D, ",")
		if len(fields) != seatRecordFields {
			return nil, fmt.Errorf("seat record %d has %d fields, want %d: %q", i, len(fields), seatRecordFields, s.D)
		}

		seats = append(seats, model.Seat{
			SectionID:  fields[0],
			RowNumber:  fields[1],
			SeatNumber: fields[2],
			StatusCode: fields[3],
			ID:         fields[4],
			ZoneID:     fields[5],
		})
	}
	return seats, nil
}

func toSections(results []sectionResult) []model.Section {
	sections := make([]model.Section, 0, len(results))
	for _, s := range results {
		sections = append(sections, model.Section{
			ID:          string(s.Section),
			Description: s.SectionDesc,
		})
	}
	return sections
}
