package ocr

import "strconv"

// InputOption mutates an OCR input generated from a rendered page.
type InputOption func(*Input)

// WithLanguages sets language codes on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI records the resolution the page was rendered at.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// WithTesseractPSM sets the page segmentation mode (PSM) variable for Tesseract.
// See https://tesseract-ocr.github.io/tessdoc/ImproveQuality.html#page-segmentation-method for values.
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata["tessedit_pageseg_mode"] = strconv.Itoa(mode)
	}
}
