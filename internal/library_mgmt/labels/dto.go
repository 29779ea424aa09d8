package labels

// ExportRequest: GET /labels/books?ids=1,2,3&encoding=sjis
type ExportRequest struct {
	BookIDs  []int64
	Encoding Encoding
}
