// Package document reads PDF files for the extractor: ledongthuc/pdf supplies
// the text layer, page count and image resources, MuPDF (go-fitz) rasterizes
// pages for OCR, and pdfcpu optionally validates the file up front.
package document

import (
	"context"
	"errors"
	"image"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"

	"github.com/wudi/pdfocr/extractor"
	"github.com/wudi/pdfocr/observability"
)

// DefaultDPI is the rasterization resolution used when Options.DPI is unset.
const DefaultDPI = 300

// Options configures a Reader.
type Options struct {
	// DPI is the resolution pages are rendered at for OCR.
	DPI float64
	// Password unlocks encrypted documents.
	Password string
	// Validate runs pdfcpu validation before the document is opened.
	Validate bool
	Logger   observability.Logger
	Tracer   observability.Tracer
}

// Reader implements extractor.DocumentReader.
type Reader struct {
	opts Options
}

// NewReader returns a Reader with opts applied.
func NewReader(opts Options) *Reader {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger{}
	}
	if opts.Tracer == nil {
		opts.Tracer = observability.NopTracer()
	}
	return &Reader{opts: opts}
}

// Open parses the PDF at path. The returned document owns the file handle
// until Close.
func (r *Reader) Open(ctx context.Context, path string) (extractor.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrap(err, "open document")
	}
	if info.IsDir() {
		return nil, eris.Errorf("open document: %s is a directory", path)
	}
	if r.opts.Validate {
		_, span := r.opts.Tracer.StartSpan(ctx, observability.SpanPreflight)
		span.SetTag("path", path)
		err := preflight(path, r.opts.Password)
		span.SetError(err)
		span.Finish()
		if err != nil {
			return nil, err
		}
		r.opts.Logger.Debug("preflight passed", observability.String("path", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open document")
	}
	reader, err := newPDFReader(f, info.Size(), r.opts.Password)
	if err != nil {
		f.Close()
		return nil, eris.Wrap(err, "parse document")
	}
	return &Document{
		path:   path,
		file:   f,
		reader: reader,
		dpi:    r.opts.DPI,
	}, nil
}

func newPDFReader(f *os.File, size int64, password string) (reader *pdf.Reader, err error) {
	err = safely(func() error {
		if password == "" {
			reader, err = pdf.NewReader(f, size)
			return err
		}
		tried := false
		reader, err = pdf.NewReaderEncrypted(f, size, func() string {
			if tried {
				return ""
			}
			tried = true
			return password
		})
		return err
	})
	return reader, err
}

// Document is an open PDF file.
type Document struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	dpi    float64
	raster *fitz.Document
}

func (d *Document) NumPages() int { return d.reader.NumPage() }

// Page returns the page at the zero-based index.
func (d *Document) Page(index int) (extractor.Page, error) {
	if index < 0 || index >= d.reader.NumPage() {
		return nil, eris.Errorf("page index %d out of range (0-%d)", index, d.reader.NumPage()-1)
	}
	var p pdf.Page
	if err := safely(func() error {
		p = d.reader.Page(index + 1)
		return nil
	}); err != nil {
		return nil, err
	}
	if p.V.IsNull() {
		return nil, eris.Errorf("page %d not found in page tree", index+1)
	}
	return &page{doc: d, index: index, p: p}, nil
}

// Close releases the rasterizer, if one was opened, and the file handle.
func (d *Document) Close() error {
	var errs []error
	if d.raster != nil {
		if err := d.raster.Close(); err != nil {
			errs = append(errs, eris.Wrap(err, "close rasterizer"))
		}
		d.raster = nil
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil {
			errs = append(errs, eris.Wrap(err, "close file"))
		}
		d.file = nil
	}
	return errors.Join(errs...)
}

// rasterizer opens MuPDF on first use; text-only documents never load it.
func (d *Document) rasterizer() (*fitz.Document, error) {
	if d.raster != nil {
		return d.raster, nil
	}
	doc, err := fitz.New(d.path)
	if err != nil {
		return nil, eris.Wrap(err, "open rasterizer")
	}
	d.raster = doc
	return doc, nil
}

type page struct {
	doc   *Document
	index int
	p     pdf.Page
}

func (p *page) Text() (text string, err error) {
	err = safely(func() error {
		text, err = p.p.GetPlainText(nil)
		return err
	})
	if err != nil {
		return "", eris.Wrap(err, "read text layer")
	}
	return text, nil
}

func (p *page) CharCount() int {
	var n int
	if err := safely(func() error {
		n = len(p.p.Content().Text)
		return nil
	}); err != nil {
		return 0
	}
	return n
}

func (p *page) ImageCount() (int, error) {
	var n int
	if err := safely(func() error {
		n = countImages(p.p.Resources(), 0)
		return nil
	}); err != nil {
		return 0, eris.Wrapf(err, "read image resources of page %d", p.index+1)
	}
	return n, nil
}

func (p *page) Render() (image.Image, error) {
	doc, err := p.doc.rasterizer()
	if err != nil {
		return nil, err
	}
	img, err := doc.ImageDPI(p.index, p.doc.dpi)
	if err != nil {
		return nil, eris.Wrapf(err, "rasterize page %d", p.index+1)
	}
	return img, nil
}

// safely converts panics raised by the PDF parser on malformed input into
// errors.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("malformed pdf: %v", r)
		}
	}()
	return fn()
}
