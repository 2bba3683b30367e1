package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/diewo77/prevengo/httpx"
	"github.com/diewo77/prevengo/i18n"
	"github.com/diewo77/prevengo/internal/assets"
	"github.com/diewo77/prevengo/internal/observability"
	"github.com/diewo77/prevengo/validation"
)

// maxUploadBytes bounds uploaded logos.
const maxUploadBytes = 5 << 20

// FileStore persists uploaded files and returns their location.
type FileStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// writeViolations answers 400 with one translated message per field.
func writeViolations(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	details := make(map[string]string, len(v))
	for field, code := range v {
		details[field] = i18n.T(lang, code)
	}
	httpx.JSONError(w, http.StatusBadRequest, "validation_failed", details)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	return dec.Decode(dst)
}

var imageExt = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// readImage reads an uploaded image, checks that it decodes and returns its
// bytes, sniffed content type and file extension.
func readImage(fh *multipart.FileHeader) ([]byte, string, string, error) {
	if fh.Size > maxUploadBytes {
		return nil, "", "", assets.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", "", err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, "", "", err
	}
	if len(data) > maxUploadBytes {
		return nil, "", "", assets.ErrTooLarge
	}
	ct := http.DetectContentType(data)
	ext, ok := imageExt[ct]
	if !ok {
		return nil, "", "", fmt.Errorf("unsupported image type %s", ct)
	}
	if _, err := assets.Normalize(data); err != nil {
		return nil, "", "", err
	}
	return data, ct, ext, nil
}

// uploadKey builds a unique store key below prefix.
func uploadKey(prefix string, userID uint, ext string) string {
	return fmt.Sprintf("%s/%d/%s.%s", prefix, userID, ulid.Make().String(), ext)
}

func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	observability.FromContext(r.Context()).Error(op, zap.Error(err))
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}
