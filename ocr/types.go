// Package ocr defines the abstraction used to plug an OCR engine into the
// extraction pipeline, plus the Recognizer that turns rendered pages into
// engine inputs.
package ocr

import "context"

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

// ImageFormatPNG is the encoding InputFromImage produces.
const ImageFormatPNG ImageFormat = "image/png"

// Region describes a rectangular area in pixel coordinates with the origin in
// the upper-left corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Input encapsulates a single rendered page submitted for OCR.
type Input struct {
	// ID is echoed back in the corresponding Result.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image []byte
	// Format declares the image content type (e.g., image/png).
	Format ImageFormat
	// PageIndex links the input back to the zero-based PDF page index.
	PageIndex int
	// DPI carries the resolution the page was rendered at; zero means unknown.
	DPI int
	// Languages lists engine language codes (e.g., "jpn", "eng").
	Languages []string
	// Metadata passes engine-specific knobs (e.g., "tessedit_pageseg_mode"
	// for Tesseract) without hard-coding them into the API surface.
	Metadata map[string]string
}

// TextWord represents a single recognized token.
type TextWord struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// TextLine groups words that share a baseline.
type TextLine struct {
	Text       string
	Bounds     Region
	Words      []TextWord
	Confidence float64
}

// TextBlock aggregates lines that form a logical block (paragraph, heading, etc).
type TextBlock struct {
	Text       string
	Bounds     Region
	Lines      []TextLine
	Confidence float64
}

// Result captures OCR output for a single input image.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// PlainText contains the linearized text extracted from the image.
	PlainText string
	// Blocks carries the structured layout with positional metadata.
	Blocks []TextBlock
	// Language is the first language the engine was configured with.
	Language string
}

// Confidence returns the mean block confidence in [0,1], or 0 when the engine
// reported no layout.
func (r Result) Confidence() float64 {
	if len(r.Blocks) == 0 {
		return 0
	}
	var sum float64
	for _, b := range r.Blocks {
		sum += b.Confidence
	}
	return sum / float64(len(r.Blocks))
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
