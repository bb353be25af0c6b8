// Command convert turns a product export and an image export into the
// delivery import template without running the web server.
//
//	convert -products menu.json -images pictures.json -out template.tsv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/menuconv/internal/cache"
	"github.com/JonMunkholm/menuconv/internal/config"
	"github.com/JonMunkholm/menuconv/internal/core"
	"github.com/JonMunkholm/menuconv/internal/export"
	"github.com/JonMunkholm/menuconv/internal/logging"
	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/store"
)

type options struct {
	products string
	images   string
	out      string
	format   string
	layout   string
	counter  string
	lang     string
	logLevel string
}

func main() {
	var opts options
	flag.StringVar(&opts.products, "products", "", "product export JSON (required)")
	flag.StringVar(&opts.images, "images", "", "image export JSON (required)")
	flag.StringVar(&opts.out, "out", "", `output file, "-" for stdout (default `+export.BaseName+`.<format>)`)
	flag.StringVar(&opts.format, "format", "tsv", "output format: tsv or xlsx")
	flag.StringVar(&opts.layout, "layout", "", "template layout (default from MENU_LAYOUT)")
	flag.StringVar(&opts.counter, "counter", "", "SQLite file keeping the usage counter and history")
	flag.StringVar(&opts.lang, "lang", "", "language of the unsuffixed columns (default from MENU_DEFAULT_LANG)")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	_ = godotenv.Load()
	logging.Setup(opts.logLevel, "text")

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintln(os.Stderr, "convert:", core.FormatUserError(err))
		slog.Debug("conversion failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.products == "" || opts.images == "" {
		flag.Usage()
		return errors.New("no file provided: -products and -images are required")
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.lang != "" {
		cfg.Menu.DefaultLang = opts.lang
	}
	if opts.layout != "" {
		cfg.Menu.Layout = opts.layout
	}

	storeCfg := store.Config{HistorySize: cfg.Database.HistorySize}
	if opts.counter != "" {
		storeCfg.URL = "sqlite:" + opts.counter
	}
	st, err := store.Open(ctx, storeCfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := core.NewService(cfg.ServiceConfig(), st, cache.NewMemory(time.Hour, 1))
	if err != nil {
		return err
	}

	products, err := os.Open(opts.products)
	if err != nil {
		return fmt.Errorf("no file provided: %w", err)
	}
	defer products.Close()
	images, err := os.Open(opts.images)
	if err != nil {
		return fmt.Errorf("no file provided: %w", err)
	}
	defer images.Close()

	// The output is written before the conversion is counted.
	res, err := svc.Convert(ctx, core.ConvertInput{
		ProductFile: filepath.Base(opts.products),
		Products:    products,
		ImageFile:   filepath.Base(opts.images),
		Images:      images,
		Deliver: func(_ context.Context, res *core.Result) error {
			return writeOutput(opts.out, format, res)
		},
	})
	if err != nil {
		return err
	}

	total, err := svc.Usage(ctx)
	if err != nil {
		slog.Warn("usage counter unavailable", "error", err)
	}
	fmt.Fprintf(os.Stderr, "%d rows (%d products, %d modifiers, %d unresolved references), %d conversions so far\n",
		res.Stats.TotalRows, res.Stats.Products, res.Stats.Modifiers, res.Stats.UnresolvedRefs, total)
	for _, f := range res.Fallbacks {
		fmt.Fprintf(os.Stderr, "  %s: reference %s kept as raw id\n", f.Parent, f.Raw)
	}
	return nil
}

func writeOutput(path string, format export.Format, res *core.Result) (err error) {
	var w io.Writer = os.Stdout
	if path != "-" {
		if path == "" {
			path = format.FileName()
		}
		f, cerr := os.Create(path)
		if cerr != nil {
			return fmt.Errorf("create output: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		w = f
	}

	if format == export.FormatTSV {
		_, err = w.Write(res.TSV)
		return err
	}
	layout, err := schema.Lookup(res.Layout)
	if err != nil {
		return err
	}
	return export.WriteXLSX(w, layout, res.Rows)
}
