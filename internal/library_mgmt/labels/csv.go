package labels

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var header = []string{"title", "author", "genre", "barcode", "copies"}

// WriteCSV はラベル行を指定の文字コードで CSV にする。
// SJIS で表せない文字は置換文字になる
func WriteCSV(rows []LabelRow, enc Encoding) ([]byte, error) {
	var e *encoding.Encoder
	switch enc {
	case EncodingSJIS:
		e = encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
	case EncodingUTF8, "":
		e = unicode.UTF8BOM.NewEncoder()
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}

	var b bytes.Buffer
	tw := transform.NewWriter(&b, e)
	w := csv.NewWriter(tw)
	// ラベルソフトは CRLF 前提
	w.UseCRLF = true

	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{r.Title, r.Author, r.Genre, r.Barcode, strconv.Itoa(r.TotalCopies)}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func barcode(bookID int64) string {
	return fmt.Sprintf("BOOK-%06d", bookID)
}
