package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format for deadlines: calendar date, no time component.
const DateLayout = "2006-01-02"

// Date is a calendar date (no time-of-day, UTC).
// It serializes as "YYYY-MM-DD" and is comparable by day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (negative n goes back).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// String returns the date in wire format.
func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// MarshalJSON serializes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a "YYYY-MM-DD" JSON string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CampaignRecord is the canonical record for one discovered campaign.
// Records are value objects: once normalized they are never mutated,
// only replaced by a later observation with the same ExternalID.
type CampaignRecord struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Category    string `json:"category"`
	RewardType  string `json:"reward_type,omitempty"`
	RewardValue string `json:"reward_value,omitempty"`
	Deadline    *Date  `json:"deadline,omitempty"`
	SourceURL   string `json:"source_url"`
	ExternalID  string `json:"external_id"`
}

// HasDeadline reports whether a deadline was parsed for this record.
func (c *CampaignRecord) HasDeadline() bool {
	return c.Deadline != nil
}

// ExpiredAt reports whether the record's deadline is strictly before the
// given run date. A record without a deadline never expires.
func (c *CampaignRecord) ExpiredAt(runDate Date) bool {
	return c.Deadline != nil && c.Deadline.Before(runDate)
}
