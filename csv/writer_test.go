package csv_test

import (
	"context"
	stdcsv "encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhoang/nhatot"
	"github.com/vhoang/nhatot/csv"
)

func TestDefaultFilename(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 31, 15, 42, 10, 0, time.UTC)
	assert.Equal(t, "real_estate_data_20250131_154210.csv", csv.DefaultFilename(now))
}

func TestWriter_WriteListings(t *testing.T) {
	t.Parallel()

	listing := func() *nhatot.Listing {
		return &nhatot.Listing{
			Title:        "Bán nhà 3 tầng Hải Châu",
			PropertyType: "Nhà ở",
			Bedrooms:     "3",
			Bathrooms:    "2",
			Direction:    "Đông Nam",
			Price:        "5,2 tỷ",
			PriceUnit:    "tỷ",
			Area:         "80 m²",
			Location:     "Quận Hải Châu",
			PostedDate:   "2 ngày trước",
			URL:          "https://www.nhatot.com/ban-nha-123456.htm",
			ImageURL:     "https://cdn.nhatot.com/123456.jpg",
			Description:  "Nhà 3 tầng mặt tiền",
			PageNumber:   1,
			ItemIndex:    2,
			ExtractedAt:  time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC),
		}
	}

	readAll := func(t *testing.T, path string) [][]string {
		t.Helper()
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		rows, err := stdcsv.NewReader(f).ReadAll()
		require.NoError(t, err)
		return rows
	}

	t.Run("writes a header and one row per listing", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "out.csv")
		w := csv.NewWriter(path)
		require.NoError(t, w.WriteListings(context.Background(), []*nhatot.Listing{listing(), listing()}))

		rows := readAll(t, path)
		require.Len(t, rows, 3)
		assert.Equal(t, csv.Columns, rows[0])
		assert.Equal(t, []string{
			"Bán nhà 3 tầng Hải Châu", "5,2 tỷ", "80 m²", "Quận Hải Châu",
			"Nhà 3 tầng mặt tiền", "https://www.nhatot.com/ban-nha-123456.htm",
			"https://cdn.nhatot.com/123456.jpg", "2 ngày trước", "Nhà ở",
			"3", "2", "1", "2", "2026-08-31T10:30:00Z",
		}, rows[1])
	})

	t.Run("every row carries every column even when fields are empty", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "sparse.csv")
		sparse := &nhatot.Listing{Title: "Chỉ có tiêu đề", PageNumber: 2, ItemIndex: 7}
		require.NoError(t, csv.NewWriter(path).WriteListings(context.Background(), []*nhatot.Listing{sparse}))

		rows := readAll(t, path)
		require.Len(t, rows, 2)
		require.Len(t, rows[1], len(csv.Columns))
		assert.Equal(t, "Chỉ có tiêu đề", rows[1][0])
		assert.Equal(t, "2", rows[1][11])
		assert.Equal(t, "7", rows[1][12])
	})

	t.Run("replaces an existing file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "replace.csv")
		require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
		require.NoError(t, csv.NewWriter(path).WriteListings(context.Background(), nil))

		rows := readAll(t, path)
		require.Len(t, rows, 1)
		assert.Equal(t, csv.Columns, rows[0])
	})

	t.Run("an empty path picks the timestamp-derived default", func(t *testing.T) {
		t.Parallel()
		w := csv.NewWriter("")
		assert.Regexp(t, `^real_estate_data_\d{8}_\d{6}\.csv$`, w.Path())
	})
}
