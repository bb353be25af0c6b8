package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/menuconv/internal/export"
	"github.com/JonMunkholm/menuconv/internal/logging"
	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/source"
)

// ErrConversionNotFound is returned for unknown or expired conversion ids.
var ErrConversionNotFound = errors.New("conversion not found")

// PreviewLines is the number of data lines shown under the header.
const PreviewLines = 10

// UsageCounter persists the number of successful conversions.
type UsageCounter interface {
	Increment(ctx context.Context) (int64, error)
	Total(ctx context.Context) (int64, error)
}

// HistoryStore keeps a log of finished conversions.
type HistoryStore interface {
	RecordConversion(ctx context.Context, rec ConversionRecord) error
	RecentConversions(ctx context.Context, limit int) ([]ConversionRecord, error)
}

// Store is a persistence backend serving both the counter and the history.
type Store interface {
	UsageCounter
	HistoryStore
	Close() error
}

// ResultStore keeps finished conversions available for download.
// Load returns ErrConversionNotFound for unknown ids.
type ResultStore interface {
	Save(ctx context.Context, res *Result) error
	Load(ctx context.Context, id string) (*Result, error)
}

// ConversionRecord is one history entry.
type ConversionRecord struct {
	ID          string    `json:"id"`
	ProductFile string    `json:"product_file"`
	ImageFile   string    `json:"image_file"`
	Layout      string    `json:"layout"`
	Stats       Stats     `json:"stats"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Result is a finished conversion with its serialized template.
type Result struct {
	ID          string       `json:"id"`
	ProductFile string       `json:"product_file"`
	ImageFile   string       `json:"image_file"`
	Layout      string       `json:"layout"`
	Stats       Stats        `json:"stats"`
	Fallbacks   []Fallback   `json:"fallbacks,omitempty"`
	Rows        []schema.Row `json:"rows"`
	TSV         []byte       `json:"tsv"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Preview returns the header line and up to n data lines of the TSV,
// without the byte order mark.
func (r *Result) Preview(n int) []string {
	text := strings.TrimPrefix(string(r.TSV), export.BOM)
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.SplitN(text, "\n", n+2)
	if len(lines) > n+1 {
		lines = lines[:n+1]
	}
	return lines
}

// ConvertInput names and streams the two exports of one conversion.
type ConvertInput struct {
	ProductFile string
	Products    io.Reader
	ImageFile   string
	Images      io.Reader
	// Layout selects the output layout; empty uses the service default.
	Layout string
	// Deliver, when set, receives the stored result before it is counted.
	// An error fails the conversion and leaves the counter untouched.
	Deliver func(ctx context.Context, res *Result) error
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Options       Options
	Layout        string
	MaxConcurrent int
	MaxWait       time.Duration
	// Timeout bounds a single conversion, including the wait for a slot.
	Timeout time.Duration
}

// Service runs conversions and keeps their side effects: the usage counter,
// the history and the downloadable results.
type Service struct {
	opts    Options
	layout  schema.Layout
	timeout time.Duration
	limiter *ConvertLimiter

	store   Store
	results ResultStore

	now func() time.Time
}

// NewService validates cfg and returns a service backed by store and results.
func NewService(cfg ServiceConfig, store Store, results ResultStore) (*Service, error) {
	if store == nil || results == nil {
		return nil, errors.New("core: store and result store are required")
	}
	layout, err := schema.Lookup(cfg.Layout)
	if err != nil {
		return nil, err
	}
	return &Service{
		opts:    cfg.Options.withDefaults(),
		layout:  layout,
		timeout: cfg.Timeout,
		limiter: NewConvertLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		store:   store,
		results: results,
		now:     time.Now,
	}, nil
}

// DefaultLayout returns the layout used when a request names none.
func (s *Service) DefaultLayout() schema.Layout {
	return s.layout
}

// Convert parses both exports, runs the pipeline, renders the TSV, stores
// the result and hands it to in.Deliver. The usage counter is incremented
// once, only when everything else succeeded.
func (s *Service) Convert(ctx context.Context, in ConvertInput) (*Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	layout := s.layout
	if in.Layout != "" {
		l, err := schema.Lookup(in.Layout)
		if err != nil {
			return nil, err
		}
		layout = l
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	id := uuid.NewString()
	ctx = logging.ContextWithConversionID(ctx, id)
	log := logging.FromContext(ctx)

	if in.Products == nil {
		return nil, errors.New("no file provided: product export")
	}
	if in.Images == nil {
		return nil, errors.New("no file provided: image export")
	}
	doc, err := source.Parse(in.Products)
	if err != nil {
		return nil, fmt.Errorf("parse product export: %w", err)
	}
	images, err := source.ParseImages(in.Images)
	if err != nil {
		return nil, fmt.Errorf("parse image export: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conv := NewConverter(s.opts, layout).Convert(ctx, doc, images)

	var buf bytes.Buffer
	if err := export.WriteTSV(&buf, layout, conv.Rows); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	res := &Result{
		ID:          id,
		ProductFile: in.ProductFile,
		ImageFile:   in.ImageFile,
		Layout:      layout.Name,
		Stats:       conv.Stats,
		Fallbacks:   conv.Fallbacks,
		Rows:        conv.Rows,
		TSV:         buf.Bytes(),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.results.Save(ctx, res); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}
	if in.Deliver != nil {
		if err := in.Deliver(ctx, res); err != nil {
			return nil, fmt.Errorf("deliver result: %w", err)
		}
	}

	total, err := s.store.Increment(ctx)
	if err != nil {
		log.Warn("usage counter not updated", "error", err)
	}

	client := ClientFromContext(ctx)
	rec := ConversionRecord{
		ID:          res.ID,
		ProductFile: res.ProductFile,
		ImageFile:   res.ImageFile,
		Layout:      res.Layout,
		Stats:       res.Stats,
		IPAddress:   client.IPAddress,
		UserAgent:   client.UserAgent,
		CreatedAt:   res.CreatedAt,
	}
	if err := s.store.RecordConversion(ctx, rec); err != nil {
		log.Warn("conversion history not recorded", "error", err)
	}

	log.Info("conversion completed",
		"layout", res.Layout,
		"rows", res.Stats.TotalRows,
		"unresolved_refs", res.Stats.UnresolvedRefs,
		"usage_total", total,
	)
	return res, nil
}

// Result returns a stored conversion.
func (s *Service) Result(ctx context.Context, id string) (*Result, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrConversionNotFound
	}
	return s.results.Load(ctx, id)
}

// Usage returns the number of successful conversions so far.
func (s *Service) Usage(ctx context.Context) (int64, error) {
	return s.store.Total(ctx)
}

// History returns the most recent conversions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]ConversionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.RecentConversions(ctx, limit)
}

// LimiterStatus reports conversion slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Drain waits for running conversions to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
