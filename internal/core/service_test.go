package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/menuconv/internal/export"
	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/source"
)

type fakeStore struct {
	mu         sync.Mutex
	count      int64
	records    []ConversionRecord
	failCount  bool
	failRecord bool
}

func (f *fakeStore) Increment(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCount {
		return 0, errors.New("counter unavailable")
	}
	f.count++
	return f.count, nil
}

func (f *fakeStore) Total(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, nil
}

func (f *fakeStore) RecordConversion(_ context.Context, rec ConversionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRecord {
		return errors.New("history unavailable")
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) RecentConversions(_ context.Context, limit int) ([]ConversionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ConversionRecord, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

type fakeResults struct {
	mu   sync.Mutex
	byID map[string]*Result
	fail bool
}

func (f *fakeResults) Save(_ context.Context, res *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection refused")
	}
	if f.byID == nil {
		f.byID = make(map[string]*Result)
	}
	f.byID[res.ID] = res
	return nil
}

func (f *fakeResults) Load(_ context.Context, id string) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[id]
	if !ok {
		return nil, ErrConversionNotFound
	}
	return res, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeResults) {
	t.Helper()
	store := &fakeStore{}
	results := &fakeResults{}
	svc, err := NewService(ServiceConfig{Options: DefaultOptions()}, store, results)
	require.NoError(t, err)
	return svc, store, results
}

func menuInput() ConvertInput {
	return ConvertInput{
		ProductFile: "menu.json",
		Products:    strings.NewReader(menuJSON),
		ImageFile:   "pictures.json",
		Images:      strings.NewReader(imagesJSON),
	}
}

func TestService_Convert(t *testing.T) {
	svc, store, results := newTestService(t)
	ctx := ContextWithClient(context.Background(), ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"})

	res, err := svc.Convert(ctx, menuInput())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, schema.Current.Name, res.Layout)
	assert.Equal(t, 10, res.Stats.TotalRows)
	assert.True(t, strings.HasPrefix(string(res.TSV), export.BOM))

	assert.Equal(t, int64(1), store.count)
	require.Len(t, store.records, 1)
	assert.Equal(t, res.ID, store.records[0].ID)
	assert.Equal(t, "10.0.0.1", store.records[0].IPAddress)
	assert.Equal(t, "menu.json", store.records[0].ProductFile)

	loaded, err := svc.Result(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Same(t, res, loaded)
	assert.Len(t, results.byID, 1)
}

func TestService_Convert_FailuresDoNotCount(t *testing.T) {
	tests := []struct {
		name    string
		in      ConvertInput
		wantErr error
		wantMsg string
	}{
		{
			name:    "invalid product export",
			in:      ConvertInput{Products: strings.NewReader("{"), Images: strings.NewReader(imagesJSON)},
			wantErr: source.ErrInvalidJSON,
			wantMsg: "parse product export",
		},
		{
			name:    "trailing data after product export",
			in:      ConvertInput{Products: strings.NewReader(`{"reference":{"product":[{"id":5}]}} }}} not json`), Images: strings.NewReader(imagesJSON)},
			wantErr: source.ErrInvalidJSON,
			wantMsg: "parse product export",
		},
		{
			name:    "empty image export",
			in:      ConvertInput{Products: strings.NewReader(menuJSON), Images: strings.NewReader("")},
			wantErr: source.ErrEmptyDocument,
			wantMsg: "parse image export",
		},
		{
			name:    "unknown layout",
			in:      ConvertInput{Products: strings.NewReader(menuJSON), Images: strings.NewReader(imagesJSON), Layout: "v9"},
			wantErr: schema.ErrUnknownLayout,
		},
		{
			name:    "missing image export",
			in:      ConvertInput{Products: strings.NewReader(menuJSON)},
			wantMsg: "no file provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(t)

			_, err := svc.Convert(context.Background(), tt.in)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.Zero(t, store.count)
			assert.Empty(t, store.records)
		})
	}
}

func TestService_Convert_DeliveryFailureDoesNotCount(t *testing.T) {
	svc, store, _ := newTestService(t)

	var delivered *Result
	in := menuInput()
	in.Deliver = func(_ context.Context, res *Result) error {
		delivered = res
		return errors.New("disk full")
	}
	_, err := svc.Convert(context.Background(), in)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliver result: disk full")
	require.NotNil(t, delivered)
	assert.NotEmpty(t, delivered.TSV)
	assert.Zero(t, store.count)
	assert.Empty(t, store.records)
}

func TestService_Convert_DeliverRunsBeforeCounting(t *testing.T) {
	svc, store, _ := newTestService(t)

	in := menuInput()
	in.Deliver = func(context.Context, *Result) error {
		assert.Zero(t, store.count, "counter bumped before delivery")
		return nil
	}
	_, err := svc.Convert(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, int64(1), store.count)
}

func TestService_Convert_StoreFailureDoesNotCount(t *testing.T) {
	svc, store, results := newTestService(t)
	results.fail = true

	_, err := svc.Convert(context.Background(), menuInput())
	require.Error(t, err)
	assert.Equal(t, "DB001", MapError(err).Code)
	assert.Zero(t, store.count)
}

func TestService_Convert_CounterFailureIsNotFatal(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.failCount = true
	store.failRecord = true

	res, err := svc.Convert(context.Background(), menuInput())
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestService_Convert_LegacyLayout(t *testing.T) {
	svc, _, _ := newTestService(t)
	in := menuInput()
	in.Layout = schema.Legacy.Name

	res, err := svc.Convert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "legacy", res.Layout)
	assert.Equal(t, strings.Join(schema.Legacy.Headers(), "\t"), res.Preview(0)[0])
}

func TestService_UsageAndHistory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		res, err := svc.Convert(ctx, menuInput())
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}

	total, err := svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	history, err := svc.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ids[2], history[0].ID)
	assert.Equal(t, ids[1], history[1].ID)
}

func TestService_Result_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Result(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrConversionNotFound)

	_, err = svc.Result(context.Background(), "6f1c3c1e-8a35-4a55-9d55-0d1b1a2e4c11")
	assert.ErrorIs(t, err, ErrConversionNotFound)
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(ServiceConfig{}, nil, &fakeResults{})
	assert.Error(t, err)

	_, err = NewService(ServiceConfig{Layout: "v9"}, &fakeStore{}, &fakeResults{})
	assert.ErrorIs(t, err, schema.ErrUnknownLayout)
}

func TestResult_Preview(t *testing.T) {
	var lines []string
	lines = append(lines, "h1\th2")
	for i := 0; i < 15; i++ {
		lines = append(lines, "a\tb")
	}
	res := &Result{TSV: []byte(export.BOM + strings.Join(lines, "\n") + "\n")}

	preview := res.Preview(PreviewLines)
	require.Len(t, preview, PreviewLines+1)
	assert.Equal(t, "h1\th2", preview[0])

	short := &Result{TSV: []byte(export.BOM + "h\nx\n")}
	assert.Equal(t, []string{"h", "x"}, short.Preview(PreviewLines))

	assert.Nil(t, (&Result{}).Preview(PreviewLines))
}
