package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("attachments", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	headers := req.MultipartForm.File["attachments"]
	require.Len(t, headers, 1)
	return headers[0]
}

func TestStageAndFinalize(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	staged, err := store.Stage(uploadHeader(t, "notes.txt", "hello"))
	require.NoError(t, err)
	require.NotNil(t, staged)

	assert.Equal(t, "notes.txt", staged.OrigName)
	assert.True(t, strings.HasSuffix(staged.FileName, "_notes.txt"))

	// Not public until finalized.
	_, err = os.Stat(filepath.Join(store.Dir, staged.FileName))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Finalize(staged))

	data, err := os.ReadFile(filepath.Join(store.Dir, staged.FileName))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStageSanitizesName(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	staged, err := store.Stage(uploadHeader(t, "../../sneaky file.txt", "x"))
	require.NoError(t, err)
	require.NotNil(t, staged)

	assert.NotContains(t, staged.FileName, "/")
	assert.NotContains(t, staged.FileName, "..")
	assert.True(t, strings.HasSuffix(staged.FileName, "_sneaky_file.txt"))
}

func TestStagedFilesLiveOutsideServedDir(t *testing.T) {
	store, err := NewUploadStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	staged, err := store.Stage(uploadHeader(t, "secret.txt", "z"))
	require.NoError(t, err)
	require.NotNil(t, staged)

	// Dir is mounted over HTTP; an uncommitted file under it would be
	// fetchable before its transaction commits.
	rel, err := filepath.Rel(store.Dir, staged.stagePath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, ".."), "staged file %s is under the public dir %s", staged.stagePath, store.Dir)
}

func TestStageSkipsEmptyHeader(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	staged, err := store.Stage(nil)
	require.NoError(t, err)
	assert.Nil(t, staged)
}

func TestDiscardRemovesStagedFiles(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	staged, err := store.Stage(uploadHeader(t, "drop.txt", "y"))
	require.NoError(t, err)

	store.Discard([]*StagedFile{staged, nil})

	_, err = os.Stat(staged.stagePath)
	assert.True(t, os.IsNotExist(err))

	// Finalizing a discarded file fails.
	assert.Error(t, store.Finalize(staged))
}
