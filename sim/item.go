// Package sim provides an in-memory virtualized list. It renders only a
// window of recycled nodes around the scroll position, the way chat and
// social web apps render long member lists, and is used to exercise the
// harvester without a browser.
package sim

import (
	"fmt"
	"html"
	"strings"
)

// Item is one entry of a simulated list.
type Item struct {
	Name  string
	Phone string
	Admin bool
}

// Generate returns n distinct items. Every fifth item has no phone number
// so that its identity comes from the name.
func Generate(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			Name:  fmt.Sprintf("Person %04d", i+1),
			Admin: i%50 == 0,
		}
		if i%5 != 4 {
			items[i].Phone = fmt.Sprintf("+1 (555) %03d-%04d", i/10000, i%10000)
		}
	}
	return items
}

// WithDuplicates returns items with every step-th item repeated right
// after itself, with its name decorated the way a host page might.
func WithDuplicates(items []Item, step int) []Item {
	if step < 1 {
		return items
	}
	out := make([]Item, 0, len(items)+len(items)/step)
	for i, it := range items {
		out = append(out, it)
		if i%step == 0 {
			dup := it
			dup.Name = "\u200e" + it.Name + " "
			out = append(out, dup)
		}
	}
	return out
}

// markup renders an item the way a host page renders a list row.
func (it Item) markup(pos int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div role="listitem" aria-posinset="%d">`, pos)
	fmt.Fprintf(&b, `<span dir="auto" title="%s">%s</span>`, html.EscapeString(it.Name), html.EscapeString(it.Name))
	if it.Phone != "" {
		fmt.Fprintf(&b, `<span class="phone">%s</span>`, html.EscapeString(it.Phone))
	}
	if it.Admin {
		b.WriteString(`<div class="badge">Group admin</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}
