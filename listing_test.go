package nhatot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhoang/nhatot"
)

func TestListing_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *nhatot.Listing {
		return &nhatot.Listing{
			Title:       "Nhà mặt tiền Quận 1",
			PageNumber:  1,
			ItemIndex:   1,
			ExtractedAt: time.Now(),
		}
	}

	t.Run("accepts a listing with title and provenance", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, valid().Validate())
	})

	t.Run("rejects an empty title", func(t *testing.T) {
		t.Parallel()
		l := valid()
		l.Title = ""
		err := l.Validate()
		require.Error(t, err)
		assert.Equal(t, nhatot.EINVALID, nhatot.ErrorCode(err))
	})

	t.Run("rejects a zero page number", func(t *testing.T) {
		t.Parallel()
		l := valid()
		l.PageNumber = 0
		assert.Equal(t, nhatot.EINVALID, nhatot.ErrorCode(l.Validate()))
	})

	t.Run("rejects a zero item index", func(t *testing.T) {
		t.Parallel()
		l := valid()
		l.ItemIndex = 0
		assert.Equal(t, nhatot.EINVALID, nhatot.ErrorCode(l.Validate()))
	})
}
