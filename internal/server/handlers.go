package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/chew-z/screenshot-translator/internal/api"
	"github.com/chew-z/screenshot-translator/internal/translate"
	"github.com/gin-gonic/gin"
)

// maxUploadBytes limits the size of an uploaded screenshot
const maxUploadBytes = 20 << 20

// maxFormBytes bounds the whole multipart body: the image plus room for the
// other fields and part headers.
const maxFormBytes = maxUploadBytes + 1<<20

// handleError sends a standardized {"detail": ...} error response
func handleError(c *gin.Context, err error) {
	var se *api.StatusError
	if errors.As(err, &se) {
		c.JSON(se.StatusCode, se)
		return
	}
	c.JSON(http.StatusInternalServerError, api.StatusError{Detail: err.Error()})
}

// handleTranslate accepts a multipart upload and returns the model's Markdown
func (s *Server) handleTranslate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBytes)

	header, err := c.FormFile("image")
	if err != nil {
		handleError(c, api.WrapError(err, http.StatusBadRequest, "Failed to read image"))
		return
	}
	if header.Size > maxUploadBytes {
		handleError(c, api.ErrBadRequest(fmt.Sprintf("Failed to read image: file too large (max %d MiB)", maxUploadBytes>>20)))
		return
	}

	file, err := header.Open()
	if err != nil {
		handleError(c, api.WrapError(err, http.StatusBadRequest, "Failed to read image"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		handleError(c, api.WrapError(err, http.StatusBadRequest, "Failed to read image"))
		return
	}

	var ctxSize int
	if raw := strings.TrimSpace(c.PostForm("ctx")); raw != "" {
		ctxSize, err = strconv.Atoi(raw)
		if err != nil || ctxSize < 0 {
			handleError(c, api.ErrBadRequest(fmt.Sprintf("ctx must be a non-negative integer, got %q", raw)))
			return
		}
	}

	// A started generation runs to completion or to the upstream timeout,
	// even if the browser goes away.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := s.translator.Translate(ctx, translate.Request{
		Image:  data,
		Prompt: c.PostForm("prompt"),
		Ctx:    ctxSize,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.TranslateResponse{
		Markdown: result.Markdown,
		Ctx:      result.ContextUsed,
	})
}

// handleLlamaStatus reports the inferred inference server state; always 200
func (s *Server) handleLlamaStatus(c *gin.Context) {
	st := s.monitor.Status(c.Request.Context())
	slog.Debug("llama status", "status", st)
	c.JSON(http.StatusOK, api.StatusResponse{Status: st})
}
