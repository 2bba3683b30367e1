// Package pdf lays out and renders quotes as A4 PDF documents.
//
// Composition runs in two passes. Layout measures text and produces an
// ordered list of paint commands per page, deciding page breaks with Fits.
// Render replays those commands on a fresh gofpdf canvas. Every call owns
// its own canvas, so a Composer is safe for concurrent use.
package pdf

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/diewo77/prevengo/internal/pdf")

// ErrNoStore is returned inside a PersistError when persistence was
// requested from a Composer built without a Store.
var ErrNoStore = errors.New("no store configured")

// LogoSource resolves an issuer logo reference (URL or local path).
type LogoSource interface {
	Load(ctx context.Context, ref string) (*Logo, error)
}

// Store persists rendered documents and returns their location.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Composer produces quote documents.
type Composer struct {
	logos    LogoSource
	store    Store
	logger   *zap.Logger
	settings Settings
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogoSource sets where issuer logos are loaded from. Without one,
// documents are rendered without a logo.
func WithLogoSource(s LogoSource) Option { return func(c *Composer) { c.logos = s } }

// WithStore sets the store used when Options.Persist is true.
func WithStore(s Store) Option { return func(c *Composer) { c.store = s } }

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLabels sets the printed labels and the number formatting locale.
func WithLabels(l Labels) Option { return func(c *Composer) { c.settings.Labels = l } }

// WithReservedTrailingSpace overrides DefaultReservedTrailingSpace.
func WithReservedTrailingSpace(pt float64) Option {
	return func(c *Composer) { c.settings.ReservedTrailingSpace = pt }
}

// WithMeasurer replaces the gofpdf text metrics. Mostly useful in tests,
// since the renderer always paints with gofpdf.
func WithMeasurer(m Measurer) Option { return func(c *Composer) { c.settings.Measurer = m } }

// NewComposer builds a Composer.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{logger: zap.NewNop(), settings: DefaultSettings()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compose lays out and renders q for iss. When opts.Persist is set the
// document is saved after rendering; a failed save is reported as a
// *PersistError alongside a Result whose Bytes are still valid.
func (c *Composer) Compose(ctx context.Context, q Quote, iss Issuer, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "pdf.Compose", trace.WithAttributes(
		attribute.String("quote.id", q.ID),
		attribute.Int("quote.items", len(q.Items)),
		attribute.Bool("persist", opts.Persist),
	))
	defer span.End()

	logo := c.loadLogo(ctx, logoRef(q, iss))

	doc := Layout(q, iss, logo, c.settings)
	data, err := Render(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return Result{}, err
	}
	res := Result{Bytes: data, Pages: len(doc.Pages)}
	span.SetAttributes(attribute.Int("pdf.pages", res.Pages), attribute.Int("pdf.bytes", len(data)))

	if !opts.Persist {
		return res, nil
	}
	key := opts.Name
	if key == "" {
		key = DocumentName(q.ID)
	}
	if c.store == nil {
		return res, &PersistError{Key: key, Err: ErrNoStore}
	}
	loc, err := c.store.Save(ctx, key, data, "application/pdf")
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("persist quote pdf", zap.String("quote_id", q.ID), zap.String("key", key), zap.Error(err))
		return res, &PersistError{Key: key, Err: err}
	}
	res.Location = loc
	return res, nil
}

func logoRef(q Quote, iss Issuer) string {
	if ref := strings.TrimSpace(iss.LogoRef); ref != "" {
		return ref
	}
	return strings.TrimSpace(q.LogoPath)
}

// loadLogo never fails: any error degrades to a document without a logo.
func (c *Composer) loadLogo(ctx context.Context, ref string) *Logo {
	if ref == "" || c.logos == nil {
		return nil
	}
	logo, err := c.logos.Load(ctx, ref)
	if err != nil {
		c.logger.Warn("logo skipped", zap.String("ref", ref), zap.Error(err))
		return nil
	}
	if logo == nil || len(logo.Data) == 0 {
		return nil
	}
	return logo
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DocumentName is the default file name of a quote document.
func DocumentName(id string) string {
	id = strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(id), "_"), "._")
	if id == "" {
		id = "quote"
	}
	return "preventivo-" + id + ".pdf"
}
