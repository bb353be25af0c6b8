package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/menuconv/internal/schema"
)

func sampleRows() []schema.Row {
	return []schema.Row{
		{
			schema.PLU:         "P1",
			schema.Name:        "Burger",
			schema.ProductType: string(schema.TypeProduct),
			schema.Price:       "12.5",
		},
		{
			schema.PLU:         "M9",
			schema.Name:        "Cheese",
			schema.ProductType: string(schema.TypeModifier),
			schema.Price:       "0",
		},
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, schema.Current, sampleRows()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, BOM), "missing BOM")
	assert.True(t, strings.HasSuffix(out, "\n"))

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, BOM), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(schema.Current.Headers(), "\t"), lines[0])

	for _, line := range lines {
		assert.Len(t, strings.Split(line, "\t"), len(schema.Current.Columns))
	}
	assert.Contains(t, lines[1], "\tBurger\t")
}

func TestWriteTSV_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, schema.Legacy, nil))

	want := BOM + strings.Join(schema.Legacy.Headers(), "\t") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, schema.Current, sampleRows()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, schema.Current.Headers(), rows[0])

	plu, err := f.GetCellValue(SheetName, "C2")
	require.NoError(t, err)
	assert.Equal(t, schema.Current.Values(sampleRows()[0])[2], plu)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTSV, false},
		{"tsv", FormatTSV, false},
		{"XLSX", FormatXLSX, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, "TAB_DLV_IMPORT_OUTPUT.tsv", FormatTSV.FileName())
	assert.Equal(t, "text/tab-separated-values", FormatTSV.ContentType())
	assert.Equal(t, "TAB_DLV_IMPORT_OUTPUT.xlsx", FormatXLSX.FileName())
}
