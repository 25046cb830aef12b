package ocr

import (
	"context"
	"image"

	"github.com/rotisserie/eris"

	"github.com/wudi/pdfocr/observability"
)

// Recognizer runs an Engine over rendered pages with a fixed set of input
// options (languages, DPI, engine knobs).
type Recognizer struct {
	engine Engine
	opts   []InputOption
	logger observability.Logger
}

// NewRecognizer returns a Recognizer that applies opts to every page.
func NewRecognizer(engine Engine, logger observability.Logger, opts ...InputOption) *Recognizer {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &Recognizer{engine: engine, opts: opts, logger: logger}
}

// Recognize returns the text the engine found on img.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, pageIndex int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	in, err := InputFromImage(img, pageIndex, r.opts...)
	if err != nil {
		return "", eris.Wrapf(err, "prepare page %d", pageIndex+1)
	}
	res, err := r.engine.Recognize(ctx, in)
	if err != nil {
		return "", eris.Wrapf(err, "%s engine", r.engine.Name())
	}
	r.logger.Debug("page recognized",
		observability.Int("page", pageIndex+1),
		observability.String("engine", r.engine.Name()),
		observability.String("language", res.Language),
		observability.Float64("confidence", res.Confidence()),
	)
	return res.PlainText, nil
}
