package goquery

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/roster"
)

var countPattern = regexp.MustCompile(`(?i)(\d[\d,.\s]*?)\s*(members|participants|contacts)\b`)

var _ roster.SizeEstimator = (*SizeEstimator)(nil)

// SizeEstimator reads the entry count a list advertises, either through
// ARIA attributes or a visible "N members" label.
type SizeEstimator struct{}

// NewSizeEstimator creates a new SizeEstimator.
func NewSizeEstimator() *SizeEstimator {
	return &SizeEstimator{}
}

// EstimateTotal returns the advertised count or ENOTFOUND if the list does
// not advertise one.
func (s *SizeEstimator) EstimateTotal(ctx context.Context, c roster.Container) (int, error) {
	html, err := c.HTML(ctx)
	if err != nil {
		return 0, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, roster.Errorf(roster.EINVALID, "failed to parse HTML: %v", err)
	}

	if n := maxAttr(doc, "aria-rowcount"); n > 0 {
		return n, nil
	}
	if n := maxAttr(doc, "aria-setsize"); n > 0 {
		return n, nil
	}
	if m := countPattern.FindStringSubmatch(doc.Text()); m != nil {
		if n := parseCount(m[1]); n > 0 {
			return n, nil
		}
	}
	return 0, roster.Errorf(roster.ENOTFOUND, "list size not advertised")
}

func maxAttr(doc *goquery.Document, attr string) int {
	best := 0
	doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(attr)
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > best {
			best = n
		}
	})
	return best
}

// parseCount reads a count that may contain thousands separators.
func parseCount(s string) int {
	n, err := strconv.Atoi(roster.PhoneDigits(s))
	if err != nil {
		return 0
	}
	return n
}
