package core

import (
	"sort"
	"strings"

	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/source"
)

// categoryIndex maps each distinct product-id set to the first category
// carrying it. Lookups scan entries in category order.
type categoryIndex struct {
	entries []categoryEntry
}

type categoryEntry struct {
	ids  map[string]struct{}
	name string
}

func newCategoryIndex(categories []source.Category, lang string) *categoryIndex {
	seen := make(map[string]bool, len(categories))
	idx := &categoryIndex{}
	for _, c := range categories {
		ids := source.RefIDs(c.Products)
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id.String()] = struct{}{}
		}
		key := setKey(set)
		if seen[key] {
			continue
		}
		seen[key] = true
		idx.entries = append(idx.entries, categoryEntry{ids: set, name: c.Name.Lang(lang)})
	}
	return idx
}

// setKey returns a canonical key for an id set: sorted ids joined by a
// separator that cannot occur in JSON-derived ids.
func setKey(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x00")
}

// lookup returns the name of the first category containing id, or "".
func (c *categoryIndex) lookup(id string) string {
	for _, e := range c.entries {
		if _, ok := e.ids[id]; ok {
			return e.name
		}
	}
	return ""
}

// AssignCategories sets the Category field of every PRODUCT row with a
// non-empty PLU. It must run before namespacing since it matches raw ids.
// It returns the number of rows that received a non-empty category.
func AssignCategories(rows []schema.Row, doc *source.Document, lang string) int {
	if doc == nil {
		return 0
	}
	if lang == "" {
		lang = source.LangFrench
	}
	idx := newCategoryIndex(doc.Reference.Categories, lang)

	assigned := 0
	for _, row := range rows {
		if row.Type() != schema.TypeProduct || row.PLU() == "" {
			continue
		}
		name := idx.lookup(row.PLU())
		row[schema.Category] = name
		if name != "" {
			assigned++
		}
	}
	return assigned
}
