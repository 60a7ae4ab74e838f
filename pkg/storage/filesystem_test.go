package storage

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStorePutAndOpen(t *testing.T) {
	store, err := NewReportStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("report.pdf", []byte("content")))
	assert.True(t, store.Exists("report.pdf"))

	file, err := store.Open("report.pdf")
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestReportStoreOpenMissing(t *testing.T) {
	store, err := NewReportStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("nothing.pdf")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestReportStoreRejectsTraversal(t *testing.T) {
	store, err := NewReportStore(t.TempDir())
	require.NoError(t, err)

	for _, handle := range []string{"", "../escape.pdf", "/etc/passwd", "a/../../b.pdf"} {
		_, err := store.Open(handle)
		assert.Error(t, err, "handle %q", handle)
		assert.False(t, os.IsNotExist(err), "handle %q should be rejected, not missing", handle)
	}
}

func TestReportStoreDelete(t *testing.T) {
	store, err := NewReportStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("report.pdf", []byte("content")))
	require.NoError(t, store.Delete("report.pdf"))
	assert.False(t, store.Exists("report.pdf"))

	// Deleting an already absent handle is not an error.
	require.NoError(t, store.Delete("report.pdf"))
}
