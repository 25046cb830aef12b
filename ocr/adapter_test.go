package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"
)

func TestInputFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	meta := map[string]string{"psm": "6"}

	in, err := InputFromImage(
		img,
		2,
		WithLanguages("jpn", "eng"),
		WithDPI(300),
		WithMetadata(meta),
	)
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}
	if in.Format != ImageFormatPNG {
		t.Fatalf("unexpected format: %v", in.Format)
	}
	if in.PageIndex != 2 || in.ID != "page-2" {
		t.Fatalf("unexpected page identity: %d %s", in.PageIndex, in.ID)
	}
	if !reflect.DeepEqual(in.Languages, []string{"jpn", "eng"}) {
		t.Fatalf("unexpected languages: %+v", in.Languages)
	}
	if in.DPI != 300 {
		t.Fatalf("unexpected dpi: %d", in.DPI)
	}
	meta["psm"] = "7"
	if in.Metadata["psm"] != "6" {
		t.Fatalf("metadata was not copied: %+v", in.Metadata)
	}

	decoded, err := png.Decode(bytes.NewReader(in.Image))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if _, ok := decoded.(*image.Gray); !ok {
		t.Fatalf("expected grayscale png, got %T", decoded)
	}
	if decoded.Bounds().Dx() != 4 || decoded.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds: %v", decoded.Bounds())
	}
}

func TestInputFromImageScalesOversizedPages(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, MaxImageDimension*2, 10))
	gray, err := preprocess(img)
	if err != nil {
		t.Fatalf("preprocess() error = %v", err)
	}
	if gray.Bounds().Dx() != MaxImageDimension || gray.Bounds().Dy() != 5 {
		t.Fatalf("unexpected scaled bounds: %v", gray.Bounds())
	}
}

func TestInputFromImageRejectsEmpty(t *testing.T) {
	if _, err := InputFromImage(image.NewGray(image.Rect(0, 0, 0, 0)), 0); err == nil {
		t.Fatalf("expected error for empty image")
	}
	if _, err := InputFromImage(nil, 0); err == nil {
		t.Fatalf("expected error for nil image")
	}
}
