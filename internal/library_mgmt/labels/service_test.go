package labels

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/testutil"
)

func TestExportBooks(t *testing.T) {
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "gabo.garcia@mail.com")
	a := testutil.SeedBook(t, d, author, "Cien Anos")
	b := testutil.SeedBook(t, d, author, "El Otono")
	testutil.SeedInventory(t, d, a, 4, 4, 0)
	svc := NewService(d)
	ctx := context.Background()

	out, err := svc.ExportBooks(ctx, ExportRequest{Encoding: EncodingUTF8})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(string(out), "\ufeff"), "\r\n"), "\r\n")
	assert.Equal(t, []string{
		"title,author,genre,barcode,copies",
		"Cien Anos,Gabriel Garcia,Novela," + barcode(a) + ",4",
		"El Otono,Gabriel Garcia,Novela," + barcode(b) + ",0",
	}, lines)

	_, err = svc.ExportBooks(ctx, ExportRequest{BookIDs: []int64{a, 999}})
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))

	_, err = svc.ExportBooks(ctx, ExportRequest{Encoding: "latin1"})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}
