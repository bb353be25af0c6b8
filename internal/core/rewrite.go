package core

import (
	"strings"

	"github.com/JonMunkholm/menuconv/internal/schema"
)

// Fallback records a reference that no legal namespaced PLU could satisfy.
// The raw id is kept in the output.
type Fallback struct {
	Parent string `json:"parent"`
	Raw    string `json:"raw"`
}

// childNamespace returns the namespace a row's Subproducts must resolve into.
// ok is false for parents whose references are kept raw.
func childNamespace(row schema.Row) (ns Namespace, ok bool) {
	switch NamespaceOf(row) {
	case NamespaceBundle:
		return NamespaceProduct, true
	case NamespaceProduct:
		return NamespaceModifierGroup, true
	case NamespaceCombo:
		return NamespaceBundle, true
	case NamespaceModifierGroup:
		return NamespaceModifier, true
	case NamespaceUpsellGroup:
		return NamespaceProduct, true
	default:
		return NamespaceNone, false
	}
}

// RewriteReferences replaces every raw id in Subproducts with the namespaced
// PLUs legal for the parent. A raw id matching several legal PLUs expands to
// all of them in index order; one matching none is kept raw and reported.
func RewriteReferences(rows []schema.Row, ix *Index) []Fallback {
	var fallbacks []Fallback
	for _, row := range rows {
		refs := row[schema.Subproducts]
		if refs == "" {
			continue
		}
		want, ok := childNamespace(row)

		var out []string
		for _, raw := range strings.Split(refs, ",") {
			if raw == "" {
				continue
			}
			if !ok {
				out = append(out, raw)
				continue
			}
			matched := false
			for _, c := range ix.Candidates(raw) {
				if c.Namespace == want {
					out = append(out, c.PLU)
					matched = true
				}
			}
			if !matched {
				out = append(out, raw)
				fallbacks = append(fallbacks, Fallback{Parent: row.PLU(), Raw: raw})
			}
		}
		row[schema.Subproducts] = strings.Join(out, ",")
	}
	return fallbacks
}
