package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// MaxImageDimension is the largest width or height Tesseract accepts.
const MaxImageDimension = 32767

// InputFromImage converts a rendered page into a PNG-encoded OCR input. The
// page is flattened to grayscale and scaled down if either side exceeds
// MaxImageDimension.
func InputFromImage(img image.Image, pageIndex int, opts ...InputOption) (Input, error) {
	if img == nil {
		return Input{}, fmt.Errorf("nil image")
	}
	gray, err := preprocess(img)
	if err != nil {
		return Input{}, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return Input{}, fmt.Errorf("encode page image: %w", err)
	}
	in := Input{
		ID:        fmt.Sprintf("page-%d", pageIndex),
		Image:     buf.Bytes(),
		Format:    ImageFormatPNG,
		PageIndex: pageIndex,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}

func preprocess(img image.Image) (*image.Gray, error) {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image %dx%d", w, h)
	}
	if w <= MaxImageDimension && h <= MaxImageDimension {
		dst := image.NewGray(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
		return dst, nil
	}
	scale := float64(MaxImageDimension) / float64(max(w, h))
	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))
	dst := image.NewGray(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst, nil
}
