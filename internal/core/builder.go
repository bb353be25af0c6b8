package core

// builder.go flattens the export into one row per entity.
//
// Rows are produced in a fixed order: bundle rows for every meal-sequence
// step, then combo products, products, modifiers, modifier groups and upsell
// groups. Cross-kind lookups (a meal sequence's product, an option's product,
// a choice's catalogue entry) always use the first entity with the same id and
// degrade to empty values when nothing matches.

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/source"
)

// Fixed limits of upsell groups.
const (
	upsellMax = "99"
	upsellMin = "0"
)

type rowBuilder struct {
	ref    *source.Reference
	images *source.ImageCatalog
	opts   Options

	products map[string]*source.Product
	choices  map[string]*source.ProductChoice
}

// BuildRows derives the flat rows of doc. images may be nil.
func BuildRows(doc *source.Document, images *source.ImageCatalog, opts Options) []schema.Row {
	b := newRowBuilder(doc, images, opts.withDefaults())

	bundles := b.bundleRows()
	rows := make([]schema.Row, 0, len(bundles)+b.entityCount())
	rows = append(rows, bundles...)
	rows = append(rows, b.comboRows(bundles)...)
	rows = append(rows, b.productRows()...)
	rows = append(rows, b.modifierRows()...)
	rows = append(rows, b.modifierGroupRows()...)
	rows = append(rows, b.upsellGroupRows()...)
	return rows
}

func newRowBuilder(doc *source.Document, images *source.ImageCatalog, opts Options) *rowBuilder {
	if doc == nil {
		doc = &source.Document{}
	}
	b := &rowBuilder{
		ref:      &doc.Reference,
		images:   images,
		opts:     opts,
		products: make(map[string]*source.Product, len(doc.Reference.Products)),
		choices:  make(map[string]*source.ProductChoice, len(doc.Reference.Choices)),
	}
	for i := range b.ref.Products {
		p := &b.ref.Products[i]
		if _, ok := b.products[p.ID.String()]; !ok {
			b.products[p.ID.String()] = p
		}
	}
	for i := range b.ref.Choices {
		c := &b.ref.Choices[i]
		if _, ok := b.choices[c.ID.String()]; !ok {
			b.choices[c.ID.String()] = c
		}
	}
	return b
}

func (b *rowBuilder) entityCount() int {
	r := b.ref
	return len(r.MealSequences) + len(r.Products) + len(r.OptionChoices) + len(r.Options) + len(r.Suggestions)
}

func (b *rowBuilder) newRow(t schema.Type, plu string) schema.Row {
	row := b.opts.Defaults.row()
	row[schema.PLU] = plu
	row[schema.ProductType] = string(t)
	return row
}

func (b *rowBuilder) setNames(row schema.Row, bag *source.Text) {
	row[schema.Name] = bag.Lang(b.opts.Lang)
	row[schema.NameEN] = bag.Lang(source.LangEnglish)
	row[schema.NameES] = bag.Lang(source.LangSpanish)
	row[schema.NameFR] = bag.Lang(source.LangFrench)
}

func (b *rowBuilder) setDescriptions(row schema.Row, bag *source.Text) {
	row[schema.Description] = bag.Lang(b.opts.Lang)
	row[schema.DescriptionEN] = bag.Lang(source.LangEnglish)
	row[schema.DescriptionES] = bag.Lang(source.LangSpanish)
	row[schema.DescriptionFR] = bag.Lang(source.LangFrench)
}

func (b *rowBuilder) setPicture(row schema.Row, e source.Entity) {
	ref := e.Miniature()
	row[schema.ProductImageID] = ref.String()
	row[schema.ImageURL] = b.images.Resolve(ref)
}

// bundleRows synthesizes one BUNDLE row per meal-sequence step.
func (b *rowBuilder) bundleRows() []schema.Row {
	var rows []schema.Row
	for _, seq := range b.ref.MealSequences {
		for step, item := range seq.Items {
			row := b.newRow(schema.TypeBundle, seq.ID.String()+"-"+strconv.Itoa(step))
			row[schema.Name] = b.opts.BundleName
			row[schema.NameEN] = b.opts.BundleName
			row[schema.NameES] = b.opts.BundleName
			row[schema.NameFR] = b.opts.BundleName
			row[schema.Subproducts] = joinIDs(item.References())
			row[schema.Max] = "1"
			row[schema.Min] = "1"
			row[schema.IsCombo] = ""
			row[schema.Multiple] = schema.False
			rows = append(rows, row)
		}
	}
	return rows
}

// comboRows builds the PRODUCT row of each meal sequence, linking the
// sequence's bundle rows.
func (b *rowBuilder) comboRows(bundles []schema.Row) []schema.Row {
	rows := make([]schema.Row, 0, len(b.ref.MealSequences))
	for _, seq := range b.ref.MealSequences {
		row := b.newRow(schema.TypeProduct, seq.ID.String())
		b.setNames(row, seq.Name)
		b.setPicture(row, seq.Entity)
		row[schema.Price] = formatPrice(seq.Price)

		prefix := seq.ID.String() + "-"
		var steps []string
		for _, bundle := range bundles {
			if strings.HasPrefix(bundle.PLU(), prefix) {
				steps = append(steps, bundle.PLU())
			}
		}
		row[schema.Subproducts] = strings.Join(steps, ",")

		product := b.products[seq.ID.String()]
		if product != nil {
			b.setDescriptions(row, product.Description)
			row[schema.ProductTags] = strings.Join(product.AllergenList(), ",")
		} else {
			b.setDescriptions(row, nil)
			row[schema.ProductTags] = ""
		}
		row[schema.IsCombo] = schema.True
		row[schema.IsInternal] = schema.False
		row[schema.Category] = ""
		rows = append(rows, row)
	}
	return rows
}

func (b *rowBuilder) productRows() []schema.Row {
	rows := make([]schema.Row, 0, len(b.ref.Products))
	for _, p := range b.ref.Products {
		row := b.newRow(schema.TypeProduct, p.ID.String())
		b.setNames(row, p.Name)
		b.setDescriptions(row, p.Description)
		b.setPicture(row, p.Entity)
		row[schema.Price] = formatPrice(p.Price)
		row[schema.Subproducts] = joinIDs(source.RefIDs(p.Options))

		qty := p.ModifierGroups.QuantityInfo.Quantity
		row[schema.Max] = qty.MaxPermitted.String()
		row[schema.Min] = qty.MinPermitted.String()
		row[schema.ProductTags] = strings.Join(p.AllergenList(), ",")
		row[schema.IsCombo] = schema.False
		row[schema.Category] = ""
		rows = append(rows, row)
	}
	return rows
}

// modifierRows builds one MODIFIER row per option choice. Unlike every other
// kind, a missing price renders as 0.
func (b *rowBuilder) modifierRows() []schema.Row {
	rows := make([]schema.Row, 0, len(b.ref.OptionChoices))
	for _, c := range b.ref.OptionChoices {
		row := b.newRow(schema.TypeModifier, c.ID.String())
		b.setNames(row, c.Name)
		if c.Price.IsZero() {
			row[schema.Price] = "0"
		} else {
			row[schema.Price] = formatPrice(c.Price)
		}
		if pc := b.choices[c.ID.String()]; pc != nil {
			row[schema.ProductTags] = strings.Join(pc.AllergenList(), ",")
		} else {
			row[schema.ProductTags] = ""
		}
		row[schema.IsCombo] = schema.False
		rows = append(rows, row)
	}
	return rows
}

func (b *rowBuilder) modifierGroupRows() []schema.Row {
	rows := make([]schema.Row, 0, len(b.ref.Options))
	for _, o := range b.ref.Options {
		row := b.newRow(schema.TypeModifierGroup, o.ID.String())
		b.setNames(row, o.Name)
		// The default-language name prefers a product sharing the option's id.
		if p := b.products[o.ID.String()]; p != nil {
			row[schema.Name] = p.Name.Lang(b.opts.Lang)
		}
		row[schema.Subproducts] = joinIDs(source.RefIDs(o.Choices))
		row[schema.Max] = o.MaxAllowed.String()
		row[schema.Min] = o.MinRequired.String()
		row[schema.IsUpsell] = schema.False
		row[schema.IsCombo] = ""
		rows = append(rows, row)
	}
	return rows
}

func (b *rowBuilder) upsellGroupRows() []schema.Row {
	var rows []schema.Row
	for _, s := range b.ref.Suggestions {
		if s.Type.String() != source.SuggestionAdditional {
			continue
		}
		row := b.newRow(schema.TypeModifierGroup, s.ID.String())
		b.setNames(row, s.Name)
		row[schema.Subproducts] = joinIDs(source.RefIDs(s.Products))
		row[schema.Max] = upsellMax
		row[schema.Min] = upsellMin
		row[schema.IsUpsell] = schema.True
		row[schema.IsCombo] = ""
		rows = append(rows, row)
	}
	return rows
}

// formatPrice renders a minor-unit price in major units the way a float
// prints in the platform's tooling: shortest digits, always with a fractional
// part ("12.5", "10.0"), and exponent form below 1e-4 or from 1e16 on
// ("1e+18", "5e-05"). Zero and absent prices render as "".
func formatPrice(p source.Price) string {
	if p.IsZero() {
		return ""
	}
	f := p.Major()
	if exp := decimalExponent(f); exp < -4 || exp >= 16 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// decimalExponent returns the exponent of f in shortest scientific notation.
func decimalExponent(f float64) int {
	e := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.LastIndexByte(e, 'e')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(e[i+1:])
	if err != nil {
		return 0
	}
	return n
}

func joinIDs(ids []source.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
