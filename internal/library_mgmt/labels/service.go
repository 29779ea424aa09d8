package labels

import (
	"context"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Service struct {
	store *Store
}

func NewService(d *db.DB) *Service { return &Service{store: NewStore(d)} }

// ExportBooks は本のラベル CSV を作る。ids が空なら全冊
func (s *Service) ExportBooks(ctx context.Context, req ExportRequest) ([]byte, error) {
	switch req.Encoding {
	case "", EncodingSJIS, EncodingUTF8:
	default:
		return nil, apierr.ErrField("encoding", "encoding must be sjis or utf8")
	}
	rows, err := s.store.Rows(ctx, req.BookIDs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apierr.ErrInvalid("no books to print")
	}
	enc := req.Encoding
	if enc == "" {
		enc = EncodingSJIS
	}
	return WriteCSV(rows, enc)
}
