package tesseract

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/pdfocr/ocr"
)

// Engine implements ocr.Engine using the gosseract client.
type Engine struct {
	clientFactory  func() *gosseract.Client
	tessdataPrefix string
}

// Option configures an Engine.
type Option func(*Engine)

// WithTessdataPrefix points the engine at a directory of traineddata files
// instead of the Tesseract installation default.
func WithTessdataPrefix(prefix string) Option {
	return func(e *Engine) { e.tessdataPrefix = prefix }
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{clientFactory: gosseract.NewClient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image input. Each call uses its own
// client so no engine state leaks between pages.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c := e.clientFactory()
	defer c.Close()
	return e.recognizeWithClient(c, in)
}

// AvailableLanguages lists the traineddata files Tesseract can load.
func AvailableLanguages() ([]string, error) {
	return gosseract.GetAvailableLanguages()
}

func (e *Engine) recognizeWithClient(c *gosseract.Client, in ocr.Input) (ocr.Result, error) {
	if e.tessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return ocr.Result{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	plain := strings.TrimSpace(text)

	words, avgConf := extractWords(c)
	bounds := mergeBounds(words)
	block := ocr.TextBlock{
		Text:       plain,
		Bounds:     bounds,
		Lines:      []ocr.TextLine{{Text: plain, Bounds: bounds, Words: words, Confidence: avgConf}},
		Confidence: avgConf,
	}

	return ocr.Result{
		InputID:   in.ID,
		PlainText: plain,
		Blocks:    []ocr.TextBlock{block},
		Language:  firstLanguage(in.Languages),
	}, nil
}

func extractWords(c *gosseract.Client) ([]ocr.TextWord, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil, 0
	}
	words := make([]ocr.TextWord, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		conf := b.Confidence / 100.0
		sum += conf
		words = append(words, ocr.TextWord{
			Text:       b.Word,
			Bounds:     ocr.Region{X: float64(b.Box.Min.X), Y: float64(b.Box.Min.Y), Width: float64(b.Box.Dx()), Height: float64(b.Box.Dy())},
			Confidence: conf,
		})
	}
	return words, sum / float64(len(words))
}

func mergeBounds(words []ocr.TextWord) ocr.Region {
	if len(words) == 0 {
		return ocr.Region{}
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	var maxX, maxY float64
	for _, w := range words {
		minX = math.Min(minX, w.Bounds.X)
		minY = math.Min(minY, w.Bounds.Y)
		maxX = math.Max(maxX, w.Bounds.X+w.Bounds.Width)
		maxY = math.Max(maxY, w.Bounds.Y+w.Bounds.Height)
	}
	return ocr.Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func firstLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}
