package extractor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"github.com/wudi/pdfocr/observability"
)

// DocumentReader opens PDF documents for page-by-page access.
type DocumentReader interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Document is an open PDF. Callers must Close it.
type Document interface {
	NumPages() int
	// Page returns the page at the zero-based index.
	Page(index int) (Page, error)
	Close() error
}

// Page exposes the parts of a PDF page the extractor needs.
type Page interface {
	// Text returns the page's embedded text layer.
	Text() (string, error)
	// CharCount reports the number of glyphs in the text layer.
	CharCount() int
	// ImageCount reports the number of raster images drawn by the page.
	// An error means the page's image resources could not be resolved.
	ImageCount() (int, error)
	// Render rasterizes the page.
	Render() (image.Image, error)
}

// TextRecognizer turns a rendered page into text.
type TextRecognizer interface {
	Recognize(ctx context.Context, img image.Image, pageIndex int) (string, error)
}

// Result is the outcome of a successful extraction.
type Result struct {
	// Pages holds one entry per page, in page order.
	Pages []string
	// PageCount is the number of pages in the source document.
	PageCount int
	// UsedOCR reports whether at least one page fell back to OCR.
	UsedOCR bool
}

// pageStats describes how a single page was processed.
type pageStats struct {
	Index      int
	TextLength int
	CharCount  int
	ImageCount int
	OCR        bool
}

const previewLength = 100

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger routes per-page diagnostics to logger.
func WithLogger(logger observability.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer wraps extraction stages in spans.
func WithTracer(tracer observability.Tracer) Option {
	return func(e *Extractor) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// Extractor pulls text out of every page of a document, falling back to OCR
// for pages that carry images but no text layer.
type Extractor struct {
	reader     DocumentReader
	recognizer TextRecognizer
	logger     observability.Logger
	tracer     observability.Tracer
}

// New creates an extractor reading documents with reader and recognizing
// image-only pages with recognizer.
func New(reader DocumentReader, recognizer TextRecognizer, opts ...Option) *Extractor {
	e := &Extractor{
		reader:     reader,
		recognizer: recognizer,
		logger:     observability.NopLogger{},
		tracer:     observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes every page of the PDF at path. Any failure aborts the
// whole call with a *DocumentError; no partial result is returned.
func (e *Extractor) Extract(ctx context.Context, path string) (res Result, err error) {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanExtract)
	span.SetTag("path", path)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	if e.reader == nil {
		return Result{}, &DocumentError{Path: path, Err: errors.New("no document reader configured")}
	}
	doc, err := e.reader.Open(ctx, path)
	if err != nil {
		return Result{}, &DocumentError{Path: path, Err: err}
	}
	defer func() {
		cerr := doc.Close()
		if cerr != nil && err == nil {
			res = Result{}
			err = &DocumentError{Path: path, Err: fmt.Errorf("close document: %w", cerr)}
		}
	}()

	log := e.logger.With(observability.String("path", path))
	count := doc.NumPages()
	pages := make([]string, 0, count)
	usedOCR := false
	for idx := 0; idx < count; idx++ {
		if err := ctx.Err(); err != nil {
			return Result{}, &DocumentError{Path: path, Page: idx + 1, Err: err}
		}
		text, stats, err := e.extractPage(ctx, doc, idx)
		if err != nil {
			return Result{}, &DocumentError{Path: path, Page: idx + 1, Err: err}
		}
		log.Debug("page processed",
			observability.Int("page", idx+1),
			observability.Int("text_length", stats.TextLength),
			observability.String("preview", preview(text)),
			observability.Int("char_count", stats.CharCount),
			observability.Int("image_count", stats.ImageCount),
			observability.Bool("ocr", stats.OCR),
		)
		usedOCR = usedOCR || stats.OCR
		pages = append(pages, text)
	}

	span.SetTag("pages", count)
	span.SetTag("ocr", usedOCR)
	return Result{Pages: pages, PageCount: count, UsedOCR: usedOCR}, nil
}

func (e *Extractor) extractPage(ctx context.Context, doc Document, idx int) (string, pageStats, error) {
	stats := pageStats{Index: idx}
	page, err := doc.Page(idx)
	if err != nil {
		return "", stats, fmt.Errorf("load page: %w", err)
	}
	text, err := page.Text()
	if err != nil {
		return "", stats, fmt.Errorf("extract text: %w", err)
	}
	stats.CharCount = page.CharCount()
	if stats.ImageCount, err = page.ImageCount(); err != nil {
		return "", stats, fmt.Errorf("count images: %w", err)
	}

	if strings.TrimSpace(text) != "" {
		stats.TextLength = utf8.RuneCountInString(text)
		return text, stats, nil
	}
	if stats.ImageCount == 0 {
		return "", stats, nil
	}

	stats.OCR = true
	text, err = e.recognize(ctx, page, idx)
	if err != nil {
		return "", stats, err
	}
	stats.TextLength = utf8.RuneCountInString(text)
	return text, stats, nil
}

func (e *Extractor) recognize(ctx context.Context, page Page, idx int) (text string, err error) {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanPageOCR)
	span.SetTag("page", idx+1)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	if e.recognizer == nil {
		return "", errors.New("page needs OCR but no text recognizer is configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	img, err := page.Render()
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	text, err = e.recognizer.Recognize(ctx, img, idx)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}

func preview(text string) string {
	if text == "" {
		return "No text"
	}
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength])
}
