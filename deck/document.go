// Package deck mutates a presentation template into a per-district forecast
// deck: table text, weather icons, district and period headers. It never
// creates templates, only rewrites copies of one.
package deck

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/giangph58/Automated-ACB/internal/ooxmlpkg"
	"github.com/giangph58/Automated-ACB/internal/rels"
)

var (
	// ErrNoTable means the template slide has no table graphic frame. The
	// whole run is unusable without one.
	ErrNoTable = errors.New("deck: slide has no table")
	// ErrTableTooSmall means the table exists but cannot hold the forecast
	// grid.
	ErrTableTooSmall = errors.New("deck: table smaller than forecast grid")
)

// Alert records a non-fatal condition found while populating, such as a
// missing district text shape. The deck is still produced.
type Alert struct {
	Code    string
	Message string
}

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type Option func(*Document)

type Document struct {
	pkg       *ooxmlpkg.Package
	logger    Logger
	alerts    []Alert
	iconScale float64

	slidePath string
	relsPath  string
}

// OpenFile loads a presentation template. The returned Document holds the
// whole package in memory; nothing touches disk again until SaveFile.
func OpenFile(path string, opts ...Option) (*Document, error) {
	pkg, err := ooxmlpkg.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return newDocument(pkg, opts), nil
}

// OpenBytes is OpenFile for an in-memory template.
func OpenBytes(data []byte, opts ...Option) (*Document, error) {
	pkg, err := ooxmlpkg.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return newDocument(pkg, opts), nil
}

func newDocument(pkg *ooxmlpkg.Package, opts []Option) *Document {
	doc := &Document{
		pkg:       pkg,
		logger:    noopLogger{},
		iconScale: 0.8,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(doc)
		}
	}
	return doc
}

func WithLogger(logger Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithIconScale overrides the fraction of the cell box an icon occupies.
func WithIconScale(scale float64) Option {
	return func(d *Document) {
		if scale > 0 && scale <= 1 {
			d.iconScale = scale
		}
	}
}

// SaveFile persists the populated deck. Nothing is written before this, so
// a failed populate never leaves a partial deck behind.
func (d *Document) SaveFile(path string) error {
	return d.pkg.SaveFile(path)
}

// Alerts returns a copy of the alerts recorded so far.
func (d *Document) Alerts() []Alert {
	if d == nil || len(d.alerts) == 0 {
		return []Alert{}
	}
	out := make([]Alert, len(d.alerts))
	copy(out, d.alerts)
	return out
}

func (d *Document) addAlert(code, message string) {
	d.alerts = append(d.alerts, Alert{Code: code, Message: message})
	d.logger.Warn(message, "code", code)
}

// firstSlide resolves the first slide part through the presentation rels,
// lowest relationship id first, and caches the result.
func (d *Document) firstSlide() (string, error) {
	if d.slidePath != "" {
		return d.slidePath, nil
	}

	data, err := d.pkg.ReadPart("ppt/_rels/presentation.xml.rels")
	if err != nil {
		return "", fmt.Errorf("deck: read presentation rels: %w", err)
	}
	parsed, err := rels.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("deck: %w", err)
	}

	slides := parsed.OfType(rels.TypeSlide)
	if len(slides) == 0 {
		return "", fmt.Errorf("deck: presentation has no slides")
	}

	d.slidePath = path.Clean(path.Join("ppt", slides[0].Target))
	d.relsPath = path.Join(path.Dir(d.slidePath), "_rels", path.Base(d.slidePath)+".rels")
	return d.slidePath, nil
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, kv ...any) {}
func (noopLogger) Info(msg string, kv ...any)  {}
func (noopLogger) Warn(msg string, kv ...any)  {}
func (noopLogger) Error(msg string, kv ...any) {}

type slogLogger struct{ l *slog.Logger }

// NewSlogLogger adapts a slog.Logger to the package's Logger interface.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return slogLogger{l: l}
}

func (s slogLogger) Debug(msg string, kv ...any) { s.l.Debug(msg, kv...) }
func (s slogLogger) Info(msg string, kv ...any)  { s.l.Info(msg, kv...) }
func (s slogLogger) Warn(msg string, kv ...any)  { s.l.Warn(msg, kv...) }
func (s slogLogger) Error(msg string, kv ...any) { s.l.Error(msg, kv...) }
