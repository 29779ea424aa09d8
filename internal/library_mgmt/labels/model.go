package labels

// LabelRow はラベル1枚分（CSV 1行）
type LabelRow struct {
	Title       string
	Author      string
	Genre       string
	Barcode     string
	TotalCopies int
}

// Encoding はラベル CSV の文字コード
type Encoding string

const (
	EncodingSJIS Encoding = "sjis" // ラベルソフト向け（CP932）
	EncodingUTF8 Encoding = "utf8" // BOM 付き
)
