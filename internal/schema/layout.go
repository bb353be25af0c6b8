package schema

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownLayout is returned by Lookup for unregistered layout names.
var ErrUnknownLayout = errors.New("unknown layout")

// Column binds a header to the row field it renders.
type Column struct {
	Header string
	Field  Field
}

// Layout is a versioned import template.
type Layout struct {
	Name        string
	Description string
	Columns     []Column
	// Namespaced layouts carry prefixed PLUs and re-linked Subproducts.
	Namespaced bool
}

// Headers returns the header line of the layout.
func (l Layout) Headers() []string {
	headers := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		headers[i] = c.Header
	}
	return headers
}

// Values renders row in column order.
func (l Layout) Values(row Row) []string {
	values := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		values[i] = row[c.Field]
	}
	return values
}

// col maps a header onto the field of the same name.
func col(f Field) Column {
	return Column{Header: string(f), Field: f}
}

// Legacy is the original 25-column template with raw PLUs.
var Legacy = Layout{
	Name:        "legacy",
	Description: "25 columns, raw PLUs, ProductImageID column",
	Columns: []Column{
		col(LocationID), col(LocationName), col(PLU),
		col(Name),
		{"Name(en)", NameEN}, {"Name(es)", NameES}, {"Name(fr)", NameFR},
		col(Description),
		{"Description(en)", DescriptionEN}, {"Description(es)", DescriptionES}, {"Description(fr)", DescriptionFR},
		col(Price), col(ProductType), col(ProductImageID), col(ImageURL), col(Category),
		col(DeliveryTax), col(TakeawayTax), col(EatInTax),
		col(Subproducts), col(Min), col(Max), col(ProductTags),
		col(IsCombo), col(IsUpsell),
	},
}

// Current is the 26-column template with namespaced PLUs.
var Current = Layout{
	Name:        "current",
	Description: "26 columns, namespaced PLUs, bundle and combo flags",
	Namespaced:  true,
	Columns: []Column{
		col(LocationID), col(LocationName), col(PLU),
		col(Name),
		{"Name(en)", NameEN}, {"Name(es)", NameES}, {"Name(fr)", NameFR},
		col(Description),
		{"Description(en)", DescriptionEN}, {"Description(es)", DescriptionES}, {"Description(fr)", DescriptionFR},
		col(Price), col(ProductType), col(ImageURL), col(Category),
		col(DeliveryTax), col(TakeawayTax), col(EatInTax),
		col(Subproducts), col(Min), col(Max), col(ProductTags),
		col(IsCombo), col(IsUpsell),
		{"Multiple(bundles)", Multiple}, {"Isinternal(combos)", IsInternal},
	},
}

// Default is the layout used when none is requested.
var Default = Current

var layouts = map[string]Layout{
	Legacy.Name:  Legacy,
	Current.Name: Current,
}

// Lookup returns the layout registered under name. An empty name selects
// Default.
func Lookup(name string) (Layout, error) {
	if name == "" {
		return Default, nil
	}
	l, ok := layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	return l, nil
}

// All returns every layout sorted by name.
func All() []Layout {
	out := make([]Layout, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
