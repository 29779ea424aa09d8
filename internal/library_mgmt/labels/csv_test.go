package labels

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

var rows = []LabelRow{
	{Title: "Cien Años", Author: "Gabriel García", Genre: "Novela", Barcode: barcode(7), TotalCopies: 3},
	{Title: "吾輩は猫である", Author: "夏目漱石", Genre: "小説", Barcode: barcode(12), TotalCopies: 1},
}

func TestWriteCSVShiftJIS(t *testing.T) {
	out, err := WriteCSV(rows, EncodingSJIS)
	require.NoError(t, err)

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(out)
	require.NoError(t, err)
	s := string(decoded)

	assert.Contains(t, s, "title,author,genre,barcode,copies\r\n")
	assert.Contains(t, s, "吾輩は猫である,夏目漱石,小説,BOOK-000012,1\r\n")
	assert.Contains(t, s, "BOOK-000007,3\r\n")
}

func TestWriteCSVUTF8HasBOM(t *testing.T) {
	out, err := WriteCSV(rows[:1], EncodingUTF8)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(out), "Cien Años,Gabriel García,Novela,BOOK-000007,3\r\n")
}

func TestWriteCSVUnknownEncoding(t *testing.T) {
	_, err := WriteCSV(rows, "latin1")
	assert.Error(t, err)
}
