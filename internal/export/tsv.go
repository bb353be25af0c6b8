package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/JonMunkholm/menuconv/internal/schema"
)

// WriteTSV writes the BOM, the layout's header line and one line per row.
// Values are written verbatim; every line ends with "\n".
func WriteTSV(w io.Writer, layout schema.Layout, rows []schema.Row) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(BOM); err != nil {
		return err
	}
	if err := writeLine(bw, layout.Headers()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeLine(bw, layout.Values(row)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, cells []string) error {
	if _, err := w.WriteString(strings.Join(cells, "\t")); err != nil {
		return err
	}
	return w.WriteByte('\n')
}
