package source

import (
	"bufio"
	"bytes"
	"io"
)

// utf8BOM is the byte-order mark some Windows tools prepend to UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader that drops a leading UTF-8 BOM from r.
//
// Vendor exports saved from spreadsheet tools often carry one, and
// encoding/json rejects it as an invalid character.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}
