// Package report renders an extraction result for the console.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/wudi/pdfocr/extractor"
)

// ChunkSize is the number of characters printed per chunk of page text.
const ChunkSize = 1000

var (
	chunkSeparator = strings.Repeat("-", 80)
	pageSeparator  = strings.Repeat("=", 80)
)

// Write prints the page count, an OCR note when OCR was used, and the text
// of every page that is not blank. Page text is cut into ChunkSize-character
// chunks, each followed by a dashed line; each page ends with a double line.
func Write(w io.Writer, res extractor.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Number of pages: %d\n", res.PageCount)
	if res.UsedOCR {
		fmt.Fprintln(bw, "\nNote: This PDF contains images and OCR was used to extract text")
	}
	fmt.Fprintln(bw, "\nText content:")

	for i, text := range res.Pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(bw, "\nPage %d:\n", i+1)
		for _, chunk := range Chunks(text, ChunkSize) {
			fmt.Fprintln(bw, chunk)
			fmt.Fprintln(bw, chunkSeparator)
		}
		fmt.Fprintln(bw, pageSeparator)
	}
	return bw.Flush()
}

// Chunks splits text into consecutive windows of size characters. The last
// chunk may be shorter.
func Chunks(text string, size int) []string {
	if size <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
