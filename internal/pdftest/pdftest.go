// Package pdftest builds small, valid PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Page describes the content of one generated page.
type Page struct {
	// Text is drawn in Helvetica when non-empty.
	Text string
	// Image draws a small grayscale image XObject.
	Image bool
	// FormImage draws an image XObject nested inside a form XObject.
	FormImage bool
}

type builder struct {
	objs []string
}

func (b *builder) reserve() int {
	b.objs = append(b.objs, "")
	return len(b.objs)
}

func (b *builder) set(num int, body string) { b.objs[num-1] = body }

func (b *builder) add(body string) int {
	num := b.reserve()
	b.set(num, body)
	return num
}

// Build returns the bytes of a PDF with one page per entry.
func Build(pages ...Page) []byte {
	b := &builder{}
	catalog := b.reserve()
	root := b.reserve()
	font := b.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	kids := make([]string, 0, len(pages))
	for _, p := range pages {
		var content strings.Builder
		xobjects := map[string]int{}
		if p.Text != "" {
			fmt.Fprintf(&content, "BT /F1 24 Tf 72 720 Td (%s) Tj ET\n", escape(p.Text))
		}
		if p.Image {
			xobjects["Im1"] = b.add(grayImage())
			content.WriteString("q 200 0 0 200 72 400 cm /Im1 Do Q\n")
		}
		if p.FormImage {
			img := b.add(grayImage())
			formContent := "q 100 0 0 100 0 0 cm /Im1 Do Q"
			xobjects["Fm1"] = b.add(fmt.Sprintf(
				"<< /Type /XObject /Subtype /Form /BBox [0 0 100 100] /Resources << /XObject << /Im1 %d 0 R >> >> /Length %d >>\nstream\n%s\nendstream",
				img, len(formContent), formContent))
			content.WriteString("q 1 0 0 1 72 100 cm /Fm1 Do Q\n")
		}
		stream := content.String()
		contents := b.add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))

		resources := fmt.Sprintf("/Font << /F1 %d 0 R >>", font)
		if len(xobjects) > 0 {
			var xo strings.Builder
			for _, name := range []string{"Im1", "Fm1"} {
				if num, ok := xobjects[name]; ok {
					fmt.Fprintf(&xo, " /%s %d 0 R", name, num)
				}
			}
			resources += fmt.Sprintf(" /XObject <<%s >>", xo.String())
		}
		page := b.add(fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /Resources << %s >> /Contents %d 0 R >>",
			root, resources, contents))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", root))
	b.set(root, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
		strings.Join(kids, " "), len(kids)))
	return b.bytes(catalog)
}

func (b *builder) bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(b.objs))
	for i, body := range b.objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objs)+1, root, xref)
	return buf.Bytes()
}

func grayImage() string {
	data := "\x00\xff\xff\x00"
	return fmt.Sprintf(
		"<< /Type /XObject /Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length %d >>\nstream\n%s\nendstream",
		len(data), data)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// WriteFile writes a generated PDF into t.TempDir and returns its path.
func WriteFile(t testing.TB, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
