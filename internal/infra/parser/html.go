package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/utils/text"
)

// HTMLParser extracts candidates from HTML pages using CSS selectors
// configured per source. It uses goquery for selection.
type HTMLParser struct{}

// NewHTMLParser creates a new HTMLParser.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

// Parse applies the source's list selector to locate candidate nodes and the
// title/link/date/reward sub-selectors within each node. Title and link are
// mandatory; a candidate missing either is dropped silently. Missing
// optional sub-selectors yield empty fields instead of dropping the
// candidate. Relative links are resolved against the source endpoint.
func (p *HTMLParser) Parse(raw []byte, src *entity.SourceConfig) ([]RawCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML for source %s: %v", entity.ErrFormat, src.ID, err)
	}

	base, err := url.Parse(src.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint %q", entity.ErrConfig, src.Endpoint)
	}

	listSelector := src.Selectors.List
	if listSelector == "" {
		// Bare anchor scan when no list selector is configured.
		listSelector = "a"
	}

	var candidates []RawCandidate
	doc.Find(listSelector).Each(func(_ int, node *goquery.Selection) {
		title := text.Normalize(selectText(node, src.Selectors.Title))

		link := selectAttr(node, src.Selectors.Link, "href")
		if link == "" {
			return
		}
		if title == "" {
			return
		}

		resolved := resolveLink(base, link)

		dateText := text.Normalize(selectText(node, src.Selectors.Date))
		if dateText == "" && src.Selectors.Date == "" {
			// No date selector configured: fall back to the node's own text,
			// the deadline usually sits next to the campaign title.
			dateText = text.Normalize(node.Text())
		}

		rewardText := text.Normalize(selectText(node, src.Selectors.Reward))
		if rewardText == "" {
			rewardText = title
		}

		candidates = append(candidates, RawCandidate{
			Title:      title,
			Link:       resolved,
			DateText:   dateText,
			RewardText: rewardText,
			NearText:   text.Normalize(node.Text()),
		})
	})

	return candidates, nil
}

// selectText returns the text of the first match of selector within node,
// or the node's own text when selector is empty.
func selectText(node *goquery.Selection, selector string) string {
	if selector == "" {
		return node.Text()
	}
	return node.Find(selector).First().Text()
}

// selectAttr returns the attribute of the first match of selector within
// node, falling back to the node's own attribute when selector is empty.
func selectAttr(node *goquery.Selection, selector, attr string) string {
	target := node
	if selector != "" {
		target = node.Find(selector).First()
	}
	value, _ := target.Attr(attr)
	return strings.TrimSpace(value)
}

// resolveLink makes href absolute against the source endpoint.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
