// Package ingest parses third-party result feeds and writes them through the
// results store.
package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Feed is one event's result feed as published by the timing software.
type Feed struct {
	Date       time.Time           `json:"date" validate:"required"`
	Name       string              `json:"name" validate:"required"`
	Location   string              `json:"location"`
	Categories map[string]Category `json:"categories" validate:"required,dive"`
}

// Key identifies a feed for deduplication: same event name and date means
// the same feed, regardless of where it was submitted from.
func (f Feed) Key() string {
	return f.Name + "@" + f.Date.UTC().Format(time.RFC3339)
}

// Category is one course of the event with its result list.
type Category struct {
	Name     string         `json:"name" validate:"required"`
	Distance FlexInt        `json:"distance"`
	Climb    FlexInt        `json:"climb"`
	Results  []CourseResult `json:"results" validate:"dive"`
}

// CourseResult is one finisher line of a course.
type CourseResult struct {
	Name     string   `json:"name" validate:"required"`
	Club     string   `json:"club"`
	AgeClass string   `json:"ageclass"`
	Position FlexInt  `json:"position"`
	Time     Duration `json:"time"`
	Status   string   `json:"status" validate:"required"`
}

// FlexInt decodes JSON numbers that feeds sometimes publish as strings.
type FlexInt int

// UnmarshalJSON accepts 3, "3" and treats null/"" as zero.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadNumber, s)
	}
	*f = FlexInt(n)
	return nil
}

// Duration decodes "HH:MM:SS" finish times into seconds. Null means the
// athlete has no recorded time.
type Duration int

// Seconds returns the decoded time in seconds.
func (d Duration) Seconds() int { return int(d) }

// MarshalJSON renders the time back as quoted HH:MM:SS.
func (d Duration) MarshalJSON() ([]byte, error) {
	s := int(d)
	return []byte(fmt.Sprintf(`"%02d:%02d:%02d"`, s/3600, (s/60)%60, s%60)), nil
}

// UnmarshalJSON parses a quoted HH:MM:SS value.
func (d *Duration) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	var total int
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %q", ErrBadTime, s)
		}
		total = total*60 + n
	}
	*d = Duration(total)
	return nil
}

// ParseFeed decodes one feed document.
func ParseFeed(data []byte) (Feed, error) {
	var f Feed
	if err := json.Unmarshal(data, &f); err != nil {
		return Feed{}, fmt.Errorf("%w: %w", ErrBadFeed, err)
	}
	return f, nil
}
