// Package templates holds the templ views of the converter. Components are
// written in the .templ files; the _templ.go files are generated from them.
//
//go:generate templ generate
package templates

import (
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/menuconv/internal/core"
)

// LayoutOption is one entry of the layout selector.
type LayoutOption struct {
	Name        string
	Description string
	Selected    bool
}

// DashboardData feeds the upload page.
type DashboardData struct {
	Layouts     []LayoutOption
	Usage       int64
	History     []core.ConversionRecord
	MaxFileSize int64
}

// ResultData feeds the conversion result view.
type ResultData struct {
	Result  *core.Result
	Preview []string
}

var downloadFormats = []string{"tsv", "xlsx"}

type statItem struct {
	Label string
	Value int
}

func resultStats(s core.Stats) []statItem {
	return []statItem{
		{"Total rows", s.TotalRows},
		{"Bundles", s.Bundles},
		{"Products", s.Products},
		{"Combos", s.Combos},
		{"Modifiers", s.Modifiers},
		{"Modifier groups", s.ModifierGroups},
		{"Upsell groups", s.UpsellGroups},
	}
}

func resultMeta(res *core.Result) string {
	meta := res.ProductFile
	if res.ImageFile != "" {
		meta += " + " + res.ImageFile
	}
	return meta + " · layout " + res.Layout
}

func layoutLabel(l LayoutOption) string {
	return l.Name + " (" + l.Description + ")"
}

func conversionURL(id string) string {
	return "/conversion/" + id
}

func downloadURL(id, format string) string {
	return "/api/conversions/" + id + "/download?format=" + format
}

func cells(line string) []string {
	return strings.Split(line, "\t")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func formatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}

func fileSizeMB(n int64) string {
	return strconv.FormatInt(n>>20, 10)
}

func formatTime(t time.Time) string {
	return t.Format(time.DateTime)
}
