package ics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/zapponejosh/ordinarium/internal/calendar"
)

// ReferenceEvent is a dated entry of a published reference calendar.
type ReferenceEvent struct {
	Date    time.Time
	Summary string
}

// ParseReference reads the dated events of an iCalendar document. Events
// without a readable DTSTART are skipped.
func ParseReference(r io.Reader) ([]ReferenceEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var events []ReferenceEvent
	for _, ve := range cal.Events() {
		date, ok := eventDate(ve)
		if !ok {
			continue
		}
		var summary string
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			summary = strings.TrimSpace(p.Value)
		}
		events = append(events, ReferenceEvent{Date: date, Summary: summary})
	}
	return events, nil
}

// eventDate reads the calendar date of DTSTART, ignoring any time of day.
func eventDate(ve *ical.VEvent) (time.Time, bool) {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return time.Time{}, false
	}
	val := p.Value
	if i := strings.IndexByte(val, 'T'); i >= 0 {
		val = val[:i]
	}
	t, err := time.Parse("20060102", val)
	if err != nil {
		return time.Time{}, false
	}
	return calendar.Day(t), true
}

// Fetcher downloads reference calendars.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a fetcher with a bounded request timeout.
func NewFetcher(logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// Fetch downloads and parses the calendar at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]ReferenceEvent, error) {
	if url == "" {
		return nil, errors.New("reference calendar URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	f.logger.Info("fetching reference calendar", slog.String("url", url))
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch reference calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch reference calendar: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reference calendar: %w", err)
	}

	events, err := ParseReference(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	f.logger.Info("reference calendar parsed", slog.Int("events", len(events)))
	return events, nil
}
