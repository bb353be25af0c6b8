package core

import (
	"strconv"

	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/source"
)

// DefaultBundleName labels the synthetic bundle rows in every language.
const DefaultBundleName = "Choose your option"

// Defaults holds the location and tax constants stamped on every row.
type Defaults struct {
	LocationID   string
	LocationName string
	DeliveryTax  float64
	TakeawayTax  float64
	EatInTax     float64
}

// DefaultDefaults returns the constants used by the delivery platform's
// import template when nothing else is configured.
func DefaultDefaults() Defaults {
	return Defaults{
		LocationID:   "All locations",
		LocationName: "All locations",
		DeliveryTax:  10,
		TakeawayTax:  10,
		EatInTax:     10,
	}
}

// row returns a fresh row carrying only the constant fields.
func (d Defaults) row() schema.Row {
	return schema.Row{
		schema.LocationID:   d.LocationID,
		schema.LocationName: d.LocationName,
		schema.DeliveryTax:  formatNumber(d.DeliveryTax),
		schema.TakeawayTax:  formatNumber(d.TakeawayTax),
		schema.EatInTax:     formatNumber(d.EatInTax),
	}
}

// Options configures the row builder.
type Options struct {
	// Lang feeds the unsuffixed Name and Description columns and the
	// category names.
	Lang       string
	BundleName string
	Defaults   Defaults
}

// DefaultOptions returns French default columns, the standard bundle label
// and the default constants.
func DefaultOptions() Options {
	return Options{
		Lang:       source.LangFrench,
		BundleName: DefaultBundleName,
		Defaults:   DefaultDefaults(),
	}
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Lang == "" {
		o.Lang = source.LangFrench
	}
	if o.BundleName == "" {
		o.BundleName = DefaultBundleName
	}
	return o
}

// formatNumber renders f without trailing zeros ("10", "5.5").
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
