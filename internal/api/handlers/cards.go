package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LooWze/LooWzeIA/internal/services"
)

// MaxImageBytes caps a single uploaded face.
const MaxImageBytes = 20 << 20

// MaxUploadBytes caps the whole scan request: two faces plus form overhead.
// Bodies past it are cut off before gin spools them to disk.
const MaxUploadBytes = 2*MaxImageBytes + 1<<20

var errImageTooLarge = errors.New("image too large")

type CardHandler struct {
	identifier *services.CardIdentifier
	logger     *slog.Logger
}

func NewCardHandler(identifier *services.CardIdentifier, logger *slog.Logger) *CardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardHandler{identifier: identifier, logger: logger}
}

// UploadCard runs the identification pipeline on a two-face scan. The faces
// are multipart files named "front" and "back" ("recto" and "verso" are
// accepted too).
func (h *CardHandler) UploadCard(c *gin.Context) {
	if c.Request.ContentLength > MaxUploadBytes {
		h.rejectUpload(c, "scan", errImageTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)

	front, err := readFace(c, "front", "recto")
	if err != nil {
		h.rejectUpload(c, "front", err)
		return
	}
	back, err := readFace(c, "back", "verso")
	if err != nil {
		h.rejectUpload(c, "back", err)
		return
	}

	result, err := h.identifier.Identify(c.Request.Context(), currentUserID(c), front, back)
	if err != nil {
		if errors.Is(err, services.ErrEmptyImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Uploaded image is empty"})
			return
		}
		h.logger.Error("card identification failed",
			"request_id", c.GetString(RequestIDKey),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded images"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CardHandler) rejectUpload(c *gin.Context, face string, err error) {
	var bodyErr *http.MaxBytesError
	if errors.As(err, &bodyErr) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("scan upload exceeds %d MB", MaxUploadBytes>>20),
		})
		return
	}
	if errors.Is(err, errImageTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("%s image exceeds %d MB", face, MaxImageBytes>>20),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   fmt.Sprintf("Missing %s image", face),
		"message": "Upload both faces as multipart files named 'front' and 'back'",
	})
}

// readFace reads the first of the named multipart files that is present.
func readFace(c *gin.Context, names ...string) (services.ImageUpload, error) {
	var file *multipart.FileHeader
	var err error
	for _, name := range names {
		if file, err = c.FormFile(name); err == nil {
			break
		}
	}
	if err != nil {
		return services.ImageUpload{}, err
	}
	if file.Size > MaxImageBytes {
		return services.ImageUpload{}, errImageTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return services.ImageUpload{}, err
	}
	defer src.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(src, MaxImageBytes+1)); err != nil {
		return services.ImageUpload{}, err
	}
	if buf.Len() > MaxImageBytes {
		return services.ImageUpload{}, errImageTooLarge
	}

	return services.ImageUpload{
		Data:        buf.Bytes(),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	}, nil
}
