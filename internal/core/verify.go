package core

import (
	"strings"

	"github.com/JonMunkholm/menuconv/internal/schema"
)

// Dangling is a Subproducts entry that names no row.
type Dangling struct {
	Parent    string    `json:"parent"`
	Ref       string    `json:"ref"`
	Namespace Namespace `json:"-"`
}

// Report summarizes structural problems of a finished row set. Problems are
// reported, never repaired.
type Report struct {
	InvalidTypes  []string   `json:"invalid_types,omitempty"`
	DuplicatePLUs []string   `json:"duplicate_plus,omitempty"`
	Dangling      []Dangling `json:"dangling,omitempty"`
}

// OK reports whether no problem was found.
func (r Report) OK() bool {
	return len(r.InvalidTypes) == 0 && len(r.DuplicatePLUs) == 0 && len(r.Dangling) == 0
}

// Verify checks row types, PLU uniqueness and that every reference names an
// existing PLU.
func Verify(rows []schema.Row) Report {
	var r Report
	plus := make(map[string]int, len(rows))
	for _, row := range rows {
		if !row.Type().Valid() {
			r.InvalidTypes = append(r.InvalidTypes, row.PLU())
		}
		plus[row.PLU()]++
		if plus[row.PLU()] == 2 {
			r.DuplicatePLUs = append(r.DuplicatePLUs, row.PLU())
		}
	}
	for _, row := range rows {
		refs := row[schema.Subproducts]
		if refs == "" {
			continue
		}
		for _, ref := range strings.Split(refs, ",") {
			if ref == "" {
				continue
			}
			if _, ok := plus[ref]; ok {
				continue
			}
			ns, _, _ := ParseNamespace(ref)
			r.Dangling = append(r.Dangling, Dangling{Parent: row.PLU(), Ref: ref, Namespace: ns})
		}
	}
	return r
}
