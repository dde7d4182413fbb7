package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wikibeerdia/backend/pkg/logger"
	"github.com/wikibeerdia/backend/pkg/response"
)

// allowedImageTypes maps accepted upload mimetypes to stored file extensions.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpg":  ".jpg",
	"image/jpeg": ".jpeg",
}

// UploadHandler stores user-submitted images on local disk.
type UploadHandler struct {
	dir string
}

func NewUploadHandler(dir string) (*UploadHandler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &UploadHandler{dir: dir}, nil
}

// PUT /post-image
//
// The route sits behind RequireAuth; unauthenticated requests never reach it.
// Files with an unsupported mimetype are treated the same as a missing file.
func (h *UploadHandler) PostImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		response.Success(c, http.StatusOK, gin.H{"message": "No file provided!"})
		return
	}

	ext, ok := allowedImageTypes[file.Header.Get("Content-Type")]
	if !ok {
		response.Success(c, http.StatusOK, gin.H{"message": "No file provided!"})
		return
	}

	if oldPath := c.PostForm("oldPath"); oldPath != "" {
		h.clearImage(oldPath)
	}

	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(h.dir, name)); err != nil {
		logger.WithModule("uploads").Error("store image", zap.Error(err))
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":  "File stored.",
		"filePath": path.Join("images", name),
	})
}

// clearImage removes a previously stored image. The supplied path is reduced
// to its base name so clients cannot reach outside the uploads directory.
func (h *UploadHandler) clearImage(oldPath string) {
	name := filepath.Base(strings.ReplaceAll(oldPath, "\\", "/"))
	if name == "." || name == string(filepath.Separator) {
		return
	}
	if err := os.Remove(filepath.Join(h.dir, name)); err != nil && !os.IsNotExist(err) {
		logger.WithModule("uploads").Warn("remove old image", zap.String("path", name), zap.Error(err))
	}
}
