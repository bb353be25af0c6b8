package core

// namespace.go gives each entity kind a disjoint identifier space.
//
// Raw ids are only unique within a kind: a product and an option may both be
// "42". The namespacer prefixes every PLU according to its row kind and
// records, per raw id, every namespaced PLU it produced so the rewriter can
// pick the one that is legal for a given parent.

import (
	"strings"

	"github.com/JonMunkholm/menuconv/internal/schema"
)

// Namespace identifies the identifier space of a row.
type Namespace int

const (
	NamespaceNone Namespace = iota
	NamespaceBundle
	NamespaceProduct
	NamespaceCombo
	NamespaceModifier
	NamespaceModifierGroup
	NamespaceUpsellGroup
)

var namespacePrefixes = map[Namespace]string{
	NamespaceProduct:       "P",
	NamespaceCombo:         "MD",
	NamespaceModifier:      "M",
	NamespaceModifierGroup: "MG",
	NamespaceUpsellGroup:   "UG",
}

var namespaceNames = map[Namespace]string{
	NamespaceNone:          "none",
	NamespaceBundle:        "bundle",
	NamespaceProduct:       "product",
	NamespaceCombo:         "combo",
	NamespaceModifier:      "modifier",
	NamespaceModifierGroup: "modifier_group",
	NamespaceUpsellGroup:   "upsell_group",
}

// parseOrder lists prefixes longest first so "MD1" is never read as "M" + "D1".
var parseOrder = []Namespace{
	NamespaceCombo,
	NamespaceModifierGroup,
	NamespaceUpsellGroup,
	NamespaceModifier,
	NamespaceProduct,
}

// Prefix returns the PLU prefix of n. Bundles are unprefixed.
func (n Namespace) Prefix() string {
	return namespacePrefixes[n]
}

func (n Namespace) String() string {
	if s, ok := namespaceNames[n]; ok {
		return s
	}
	return "unknown"
}

// NamespaceOf returns the namespace a row belongs to.
func NamespaceOf(row schema.Row) Namespace {
	switch row.Type() {
	case schema.TypeBundle:
		return NamespaceBundle
	case schema.TypeProduct:
		if row.IsCombo() {
			return NamespaceCombo
		}
		return NamespaceProduct
	case schema.TypeModifier:
		return NamespaceModifier
	case schema.TypeModifierGroup:
		if row.IsUpsell() {
			return NamespaceUpsellGroup
		}
		return NamespaceModifierGroup
	default:
		return NamespaceNone
	}
}

// ParseNamespace splits a namespaced PLU into its namespace and raw id.
// Unprefixed ids containing "-" are bundles. ok is false when plu carries
// no recognizable namespace.
func ParseNamespace(plu string) (ns Namespace, raw string, ok bool) {
	for _, n := range parseOrder {
		p := n.Prefix()
		if strings.HasPrefix(plu, p) && len(plu) > len(p) {
			return n, plu[len(p):], true
		}
	}
	if strings.Contains(plu, "-") {
		return NamespaceBundle, plu, true
	}
	return NamespaceNone, plu, false
}

// Candidate is one namespaced PLU produced from a raw id.
type Candidate struct {
	PLU       string
	Namespace Namespace
}

// Index is the reverse mapping from raw ids to the namespaced PLUs derived
// from them, in row order.
type Index struct {
	byRaw map[string][]Candidate
}

// Candidates returns every namespaced PLU derived from raw.
func (ix *Index) Candidates(raw string) []Candidate {
	if ix == nil {
		return nil
	}
	return ix.byRaw[raw]
}

// Len returns the number of distinct raw ids.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byRaw)
}

// NamespaceRows rewrites every row's PLU into its namespace and returns the
// reverse index. Subproducts are left untouched.
func NamespaceRows(rows []schema.Row) *Index {
	ix := &Index{byRaw: make(map[string][]Candidate, len(rows))}
	for _, row := range rows {
		raw := row.PLU()
		ns := NamespaceOf(row)
		plu := ns.Prefix() + raw
		row[schema.PLU] = plu
		ix.byRaw[raw] = append(ix.byRaw[raw], Candidate{PLU: plu, Namespace: ns})
	}
	return ix
}
