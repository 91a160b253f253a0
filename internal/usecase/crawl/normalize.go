package crawl

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/infra/parser"
	"campaign-radar/internal/utils/text"
)

// Reward classification values.
const (
	RewardTypePoint = "point"
	RewardTypeCash  = "cash"
)

var (
	// 2026年9月30日 / 2026-9-30 / 2026/09/30
	jpDateRe = regexp.MustCompile(`(20\d{2})[年\-/](\d{1,2})[月\-/](\d{1,2})日?`)

	// 9/30 without a year
	monthDayRe = regexp.MustCompile(`(?:^|[^0-9/])(\d{1,2})/(\d{1,2})(?:[^0-9/]|$)`)

	// 30日後
	relativeDaysRe = regexp.MustCompile(`(\d{1,3})日後`)

	// 最大5,000ポイント / 300P / 1000円
	rewardRe = regexp.MustCompile(`(最大)?\s*([0-9]{1,3}(?:,[0-9]{3})*|[0-9]+)\s*(P|ポイント|円)`)
)

// Normalizer turns raw candidates into campaign records. It is bound
// to a run date so relative and year-less date phrases resolve
// deterministically within one run.
type Normalizer struct {
	today entity.Date
}

// NewNormalizer creates a Normalizer anchored at the given run date.
func NewNormalizer(today entity.Date) *Normalizer {
	return &Normalizer{today: today}
}

// Normalize produces a CampaignRecord from a raw candidate, or nil when
// the candidate carries no identity (empty name and link). A date text
// that no pattern can parse leaves the deadline unset rather than
// dropping the record.
func (n *Normalizer) Normalize(c parser.RawCandidate, src *entity.SourceConfig) *entity.CampaignRecord {
	name := text.Normalize(c.Title)
	link := strings.TrimSpace(c.Link)
	if name == "" && link == "" {
		return nil
	}

	record := &entity.CampaignRecord{
		Name:      name,
		Provider:  src.Provider,
		Category:  src.Category,
		SourceURL: link,
	}

	if deadline := n.ParseDeadline(c.DateText); deadline != nil {
		record.Deadline = deadline
	}

	if value, rewardType, ok := ExtractReward(c.RewardText); ok {
		record.RewardValue = value
		record.RewardType = rewardType
	}

	record.ExternalID = ExternalID(src.ID, link, name)
	return record
}

// ParseDeadline tries an ordered list of date patterns against the raw
// text; the first successful pattern wins. Returns nil when nothing
// parses.
func (n *Normalizer) ParseDeadline(raw string) *entity.Date {
	s := text.Normalize(raw)
	if s == "" {
		return nil
	}

	// ISO and Japanese full dates share one pattern after width folding.
	if m := jpDateRe.FindStringSubmatch(s); m != nil {
		if d, ok := calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return &d
		}
	}

	// Year-less MM/DD: assume the current year, rolling into the next
	// one when the date has already passed.
	if m := monthDayRe.FindStringSubmatch(s); m != nil {
		if d, ok := calendarDate(n.today.Year, atoi(m[1]), atoi(m[2])); ok {
			if d.Before(n.today) {
				if next, ok := calendarDate(n.today.Year+1, atoi(m[1]), atoi(m[2])); ok {
					return &next
				}
			}
			return &d
		}
	}

	// Relative phrases: N日後.
	if m := relativeDaysRe.FindStringSubmatch(s); m != nil {
		d := n.today.AddDays(atoi(m[1]))
		return &d
	}

	// Last resort: generic parser for anything else the source emits.
	if t, err := dateparse.ParseAny(s); err == nil {
		d := entity.DateOf(t)
		return &d
	}

	return nil
}

// ExtractReward pulls a reward amount and classification out of free
// text: 最大5,000ポイント → ("最大5,000ポイント", point). Point units are
// P/ポイント, everything else (円) classifies as cash.
func ExtractReward(raw string) (value, rewardType string, ok bool) {
	s := text.Normalize(raw)
	if s == "" {
		return "", "", false
	}

	m := rewardRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}

	value = text.Normalize(m[1] + m[2] + m[3])
	if m[3] == "円" {
		return value, RewardTypeCash, true
	}
	return value, RewardTypePoint, true
}

// ExternalID derives the stable campaign identity: a hash over the
// source id and the canonical link (query and fragment stripped, so
// tracking parameters do not churn the identity), falling back to the
// normalized title for sources without per-campaign links.
func ExternalID(sourceID, link, name string) string {
	anchor := canonicalLink(link)
	if anchor == "" {
		anchor = name
	}

	sum := sha256.Sum256([]byte(sourceID + "|" + anchor))
	return fmt.Sprintf("%s:%s", sourceID, hex.EncodeToString(sum[:])[:16])
}

// canonicalLink strips query parameters and fragments so the same
// campaign page re-observed with different tracking decoration hashes
// identically.
func canonicalLink(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

// calendarDate validates year/month/day via a time.Time round trip.
func calendarDate(year, month, day int) (entity.Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return entity.Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return entity.Date{}, false
	}
	return entity.DateOf(t), true
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
