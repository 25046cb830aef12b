package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/pdfocr/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary and English
// traineddata are reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
	langs, err := AvailableLanguages()
	if err != nil || !slices.Contains(langs, "eng") {
		t.Skip("eng traineddata not installed")
	}
}

func renderText(target string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 200, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(target)
	return img
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	in, err := ocr.InputFromImage(renderText("Hello PDF"), 0, ocr.WithLanguages("eng"), ocr.WithDPI(300))
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}
	res, err := NewEngine().Recognize(context.Background(), in)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	got := strings.ToLower(res.PlainText)
	if !strings.Contains(got, "hello") || !strings.Contains(got, "pdf") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
	if len(res.Blocks) == 0 || len(res.Blocks[0].Lines) == 0 {
		t.Fatalf("expected structured blocks")
	}
	if res.InputID != "page-0" || res.Language != "eng" {
		t.Fatalf("unexpected result identity: %s %s", res.InputID, res.Language)
	}
}

func TestRecognizerWithEngine(t *testing.T) {
	ensureTesseractAvailable(t)

	rec := ocr.NewRecognizer(NewEngine(), nil, ocr.WithLanguages("eng"), ocr.WithTesseractPSM(6))
	text, err := rec.Recognize(context.Background(), renderText("Hello PDF"), 3)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if !strings.Contains(strings.ToLower(text), "hello") {
		t.Fatalf("unexpected OCR output: %q", text)
	}
}

func TestEngineCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEngine().Recognize(ctx, ocr.Input{}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}

func TestMergeBounds(t *testing.T) {
	words := []ocr.TextWord{
		{Bounds: ocr.Region{X: 10, Y: 5, Width: 20, Height: 10}},
		{Bounds: ocr.Region{X: 40, Y: 2, Width: 5, Height: 30}},
	}
	got := mergeBounds(words)
	want := ocr.Region{X: 10, Y: 2, Width: 35, Height: 30}
	if got != want {
		t.Fatalf("mergeBounds() = %+v, want %+v", got, want)
	}
	if !mergeBounds(nil).IsEmpty() {
		t.Fatalf("expected empty region for no words")
	}
}
