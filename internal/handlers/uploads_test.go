package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestPostImageWithoutFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, err := NewUploadHandler(t.TempDir())
	require.NoError(t, err)

	r := gin.New()
	r.PUT("/post-image", handler.PostImage)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/post-image", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "No file provided!")
}

func TestClearImageStaysInsideUploadDir(t *testing.T) {
	dir := t.TempDir()
	handler, err := NewUploadHandler(dir)
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o600))

	inside := filepath.Join(dir, "old.png")
	require.NoError(t, os.WriteFile(inside, []byte("img"), 0o600))

	handler.clearImage("../" + filepath.Base(outside))
	_, err = os.Stat(outside)
	require.NoError(t, err, "files outside the uploads dir must not be touched")

	handler.clearImage("images/old.png")
	_, err = os.Stat(inside)
	require.True(t, os.IsNotExist(err))

	// Unknown files are ignored.
	handler.clearImage("missing.png")
}
