package roster

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// RawRecord is what a NodeExtractor produces for a single visible node.
// It is ephemeral: the harvester turns it into a Member or drops it.
type RawRecord struct {
	Name        string
	Phone       string
	IsAdmin     bool
	ExtractedAt time.Time
}

// Member is a harvested list entry. Key is the identity key produced by
// NormalizeKey and is the sole deduplication criterion.
type Member struct {
	Key         string    `json:"-"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	IsAdmin     bool      `json:"isAdmin"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// Name length bounds, in runes, after cleaning.
const (
	MinNameLength = 1
	MaxNameLength = 100
)

// boilerplatePatterns match list chrome that is rendered with the same
// structure as real entries (headers, counters, action rows).
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d[\d.,\s]*\s+(members?|participants?|contacts?)$`),
	regexp.MustCompile(`(?i)^(add|invite)(\s+(members?|participants?|people))?$`),
	regexp.MustCompile(`(?i)^view\s+(all|more)\b`),
	regexp.MustCompile(`(?i)^(search|loading)(\.\.\.|…)?$`),
	regexp.MustCompile(`(?i)^(members?|participants?)$`),
}

// NormalizeKey derives the identity key of a record. Non-empty phone digits
// win; otherwise the key is the lowercased cleaned name. Returns "" when the
// record has no usable identity.
func NormalizeKey(name, phone string) string {
	if digits := PhoneDigits(phone); digits != "" {
		return digits
	}
	return strings.ToLower(CleanName(name))
}

// PhoneDigits strips everything but ASCII digits from s.
func PhoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanName removes zero-width, bidi-control and other format characters
// as well as trademark glyphs, normalizes to NFC and collapses whitespace.
func CleanName(name string) string {
	name = norm.NFC.String(name)
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '™', '®', '©':
			return -1
		}
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, name)
	return strings.Join(strings.Fields(cleaned), " ")
}

// ValidName reports whether a display name looks like a real entry: within
// length bounds once cleaned and not list boilerplate.
func ValidName(name string) bool {
	cleaned := CleanName(name)
	n := utf8.RuneCountInString(cleaned)
	if n < MinNameLength || n > MaxNameLength {
		return false
	}
	for _, re := range boilerplatePatterns {
		if re.MatchString(cleaned) {
			return false
		}
	}
	return true
}
