package tabular

import (
	"bytes"
	"encoding/csv"
)

// utf8BOM is prepended to CSV output so that Excel and Confluence's preview
// detect the encoding correctly. Downstream consumers depend on this exact
// byte format; do not change it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EncodeCSV serializes a grid as UTF-8 CSV with CRLF line endings, prefixed
// with a byte-order marker. The grid is normalized first so that ragged API
// responses still produce rectangular CSV. An empty grid produces only the
// BOM.
func EncodeCSV(g Grid) ([]byte, error) {
	g = Normalize(g)

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	for _, row := range g {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
