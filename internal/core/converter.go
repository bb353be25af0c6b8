package core

import (
	"context"

	"github.com/JonMunkholm/menuconv/internal/logging"
	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/source"
)

// Stats counts the rows of a conversion by kind.
type Stats struct {
	TotalRows      int `json:"total_rows"`
	Bundles        int `json:"bundles"`
	Products       int `json:"products"`
	Combos         int `json:"combos"`
	Modifiers      int `json:"modifiers"`
	ModifierGroups int `json:"modifier_groups"`
	UpsellGroups   int `json:"upsell_groups"`
	Categorized    int `json:"categorized"`
	UnresolvedRefs int `json:"unresolved_refs"`
	DuplicatePLUs  int `json:"duplicate_plus"`
}

func countRows(rows []schema.Row) Stats {
	s := Stats{TotalRows: len(rows)}
	for _, row := range rows {
		switch row.Type() {
		case schema.TypeBundle:
			s.Bundles++
		case schema.TypeProduct:
			s.Products++
			if row.IsCombo() {
				s.Combos++
			}
		case schema.TypeModifier:
			s.Modifiers++
		case schema.TypeModifierGroup:
			if row.IsUpsell() {
				s.UpsellGroups++
			} else {
				s.ModifierGroups++
			}
		}
	}
	return s
}

// Conversion is the outcome of one pipeline run.
type Conversion struct {
	Rows      []schema.Row
	Layout    schema.Layout
	Stats     Stats
	Fallbacks []Fallback
	Report    Report
}

// Converter runs the row pipeline for one layout.
type Converter struct {
	opts   Options
	layout schema.Layout
}

// NewConverter returns a converter producing rows for layout.
func NewConverter(opts Options, layout schema.Layout) *Converter {
	return &Converter{opts: opts.withDefaults(), layout: layout}
}

// Convert builds, categorizes and, for namespaced layouts, namespaces and
// re-links the rows of doc. It never fails: missing data degrades to empty
// values and unresolved references are reported in the result.
func (c *Converter) Convert(ctx context.Context, doc *source.Document, images *source.ImageCatalog) *Conversion {
	log := logging.FromContext(ctx)

	rows := BuildRows(doc, images, c.opts)
	log.Debug("rows built", "rows", len(rows), "images", images.Len())

	categorized := AssignCategories(rows, doc, c.opts.Lang)
	log.Debug("categories assigned", "categorized", categorized)

	var fallbacks []Fallback
	if c.layout.Namespaced {
		ix := NamespaceRows(rows)
		fallbacks = RewriteReferences(rows, ix)
		log.Debug("references rewritten", "raw_ids", ix.Len(), "fallbacks", len(fallbacks))
	}

	report := Verify(rows)
	for _, f := range fallbacks {
		log.Warn("unresolved reference kept raw", "parent", f.Parent, "ref", f.Raw)
	}
	if len(report.DuplicatePLUs) > 0 {
		log.Warn("duplicate PLUs in output", "plus", report.DuplicatePLUs)
	}

	stats := countRows(rows)
	stats.Categorized = categorized
	stats.UnresolvedRefs = len(fallbacks)
	stats.DuplicatePLUs = len(report.DuplicatePLUs)

	return &Conversion{
		Rows:      rows,
		Layout:    c.layout,
		Stats:     stats,
		Fallbacks: fallbacks,
		Report:    report,
	}
}
