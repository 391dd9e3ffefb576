// Package shopping builds the shopping list exported from a user's cart.
package shopping

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Export format constants.
const (
	Header      = "Список покупок"
	Filename    = "shopping_cart.txt"
	ContentType = "text/plain; charset=utf-8"
)

// Row is one (ingredient, unit, amount) contribution read from storage. Rows
// may already be partially summed.
type Row struct {
	Name   string
	Unit   string
	Amount int64
}

// Item is one line of the final list.
type Item struct {
	Name   string
	Unit   string
	Amount int64
}

// List is the aggregated shopping list, sorted by name then unit.
type List struct {
	Items []Item
}

type itemKey struct {
	name string
	unit string
}

// Aggregate groups rows by (name, unit), sums their amounts and orders the
// result by name, breaking ties by unit. Comparison is byte-wise so the order
// does not depend on database collation.
func Aggregate(rows []Row) List {
	totals := make(map[itemKey]int64, len(rows))
	for _, row := range rows {
		totals[itemKey{name: row.Name, unit: row.Unit}] += row.Amount
	}

	items := make([]Item, 0, len(totals))
	for key, amount := range totals {
		items = append(items, Item{Name: key.name, Unit: key.unit, Amount: amount})
	}

	slices.SortFunc(items, func(a, b Item) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Unit, b.Unit)
	})

	return List{Items: items}
}

// IsEmpty reports whether the list has no items.
func (l List) IsEmpty() bool {
	return len(l.Items) == 0
}

// Render writes the header line followed by one line per item. Every line
// ends with a newline. An empty list renders as the header alone.
func (l List) Render() string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for _, item := range l.Items {
		b.WriteString("·")
		b.WriteString(item.Name)
		b.WriteString(" (")
		b.WriteString(item.Unit)
		b.WriteString(")- ")
		b.WriteString(strconv.FormatInt(item.Amount, 10))
		b.WriteByte('\n')
	}
	return b.String()
}

// Document is the downloadable rendering of a list.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// NewDocument renders l as a shopping_cart.txt attachment.
func NewDocument(l List) Document {
	return Document{
		Filename:    Filename,
		ContentType: ContentType,
		Body:        []byte(l.Render()),
	}
}
