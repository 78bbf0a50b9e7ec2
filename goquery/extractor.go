package goquery

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/roster"
)

// DefaultNameSelectors locate the display name inside a list row. The
// title attribute carries the untruncated name on most chat web apps.
var DefaultNameSelectors = []string{`[title]`, `[dir="auto"]`}

// DefaultAdminLabels are badge texts marking an administrator.
var DefaultAdminLabels = []string{"group admin", "admin", "owner", "moderator"}

var phonePattern = regexp.MustCompile(`^\+?[\d\s().-]{7,}\d$`)

var _ roster.NodeExtractor = (*Extractor)(nil)

// Extractor parses list row markup into raw records.
type Extractor struct {
	nameSelectors []string
	adminLabels   []string
	now           func() time.Time
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithNameSelectors sets the selectors tried, in order, for the name.
func WithNameSelectors(selectors ...string) ExtractorOption {
	return func(e *Extractor) { e.nameSelectors = selectors }
}

// WithAdminLabels sets the badge texts that mark an administrator.
func WithAdminLabels(labels ...string) ExtractorOption {
	return func(e *Extractor) { e.adminLabels = labels }
}

// WithClock sets the clock used to timestamp records.
func WithClock(c roster.Clock) ExtractorOption {
	return func(e *Extractor) { e.now = c.Now }
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		nameSelectors: DefaultNameSelectors,
		adminLabels:   DefaultAdminLabels,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the record described by node, or nil if the row has no
// name.
func (e *Extractor) Extract(ctx context.Context, node roster.Node) (*roster.RawRecord, error) {
	html, err := node.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, roster.Errorf(roster.EINVALID, "failed to parse HTML: %v", err)
	}

	name := e.name(doc)
	if name == "" {
		return nil, nil
	}

	rec := &roster.RawRecord{
		Name:        name,
		ExtractedAt: e.now().UTC(),
	}
	for _, text := range leafTexts(doc) {
		if rec.Phone == "" && phonePattern.MatchString(text) {
			rec.Phone = text
		}
		if !rec.IsAdmin && e.isAdminLabel(text) {
			rec.IsAdmin = true
		}
	}
	return rec, nil
}

func (e *Extractor) name(doc *goquery.Document) string {
	for _, sel := range e.nameSelectors {
		var name string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if title, ok := s.Attr("title"); ok && strings.TrimSpace(title) != "" {
				name = strings.TrimSpace(title)
			} else {
				name = strings.TrimSpace(s.Text())
			}
			return name == ""
		})
		if name != "" {
			return name
		}
	}
	return ""
}

func (e *Extractor) isAdminLabel(text string) bool {
	for _, label := range e.adminLabels {
		if strings.EqualFold(text, label) {
			return true
		}
	}
	return false
}

// leafTexts returns the trimmed, non-empty texts of elements without
// element children, in document order.
func leafTexts(doc *goquery.Document) []string {
	var texts []string
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}
