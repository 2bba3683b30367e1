// Package assets loads issuer logos from URLs or local files and normalises
// them to opaque 8-bit PNG, the one image form the PDF backend embeds
// without surprises.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/diewo77/prevengo/internal/pdf"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 5 << 20

	// MaxSide and MaxPixels bound the decoded canvas. A small compressed
	// file can declare dimensions that need gigabytes once decoded.
	MaxSide   = 8192
	MaxPixels = 25_000_000
)

var (
	ErrTooLarge      = errors.New("assets: image too large")
	ErrStatus        = errors.New("assets: unexpected http status")
	ErrEmptyRef      = errors.New("assets: empty reference")
	ErrTooManyPixels = errors.New("assets: image dimensions too large")
	ErrOutsideBase   = errors.New("assets: path escapes base directory")
)

// Loader implements pdf.LogoSource. It keeps no cache: every call fetches.
type Loader struct {
	client   *http.Client
	maxBytes int64
	baseDir  string
	logger   *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the HTTP client used for remote logos.
func WithHTTPClient(c *http.Client) Option { return func(l *Loader) { l.client = c } }

// WithMaxBytes caps the size of a downloaded or read logo.
func WithMaxBytes(n int64) Option { return func(l *Loader) { l.maxBytes = n } }

// WithBaseDir resolves relative local paths against dir.
func WithBaseDir(dir string) Option { return func(l *Loader) { l.baseDir = dir } }

// WithLogger sets the logger.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader returns a Loader with a DefaultTimeout HTTP client.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

var _ pdf.LogoSource = (*Loader)(nil)

// IsRemote reports whether ref is an http(s) URL.
func IsRemote(ref string) bool {
	r := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(r, "http://") || strings.HasPrefix(r, "https://")
}

// Load fetches ref and returns it as a PNG logo.
func (l *Loader) Load(ctx context.Context, ref string) (*pdf.Logo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrEmptyRef
	}
	var (
		raw []byte
		err error
	)
	if IsRemote(ref) {
		raw, err = l.fetch(ctx, ref)
	} else {
		raw, err = l.readFile(ref)
	}
	if err != nil {
		return nil, err
	}
	logo, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("logo loaded", zap.String("ref", ref), zap.Int("width", logo.Width), zap.Int("height", logo.Height))
	return logo, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("assets: build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assets: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

// readFile resolves relative paths against baseDir and refuses any that
// climb out of it.
func (l *Loader) readFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && l.baseDir != "" {
		rel := filepath.Clean(path)
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, ErrOutsideBase
		}
		path = filepath.Join(l.baseDir, rel)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assets: open: %w", err)
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("assets: read: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Normalize decodes a PNG, JPEG, GIF or WebP image and re-encodes it as an
// opaque PNG flattened on white. Images larger than MaxSide on either side
// or MaxPixels in area are rejected from the header alone.
func Normalize(raw []byte) (*pdf.Logo, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("assets: decode: %w", err)
	}
	if cfg.Width > MaxSide || cfg.Height > MaxSide || cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("assets: decode: %w", err)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("assets: decode: empty image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("assets: encode: %w", err)
	}
	return &pdf.Logo{Name: "logo", Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}
