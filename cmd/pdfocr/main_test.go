package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wudi/pdfocr/internal/pdftest"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	code, stdout, stderr := runCLI(t, "", missing)
	require.Equal(t, 1, code)
	require.Empty(t, stdout)
	require.True(t, strings.HasPrefix(stderr, "Error: "), stderr)
	require.Contains(t, stderr, "missing.pdf")
}

func TestRunPrintsReport(t *testing.T) {
	path := pdftest.WriteFile(t, "text.pdf",
		pdftest.Page{Text: "First page text"},
		pdftest.Page{},
		pdftest.Page{Text: "Third page text"},
	)

	code, stdout, stderr := runCLI(t, "", path)
	require.Equal(t, 0, code, stderr)
	require.Empty(t, stderr)
	require.True(t, strings.HasPrefix(stdout, "Number of pages: 3\n\nText content:\n"), stdout)
	require.NotContains(t, stdout, "Note: This PDF contains images")
	require.Contains(t, stdout, "\nPage 1:\n")
	require.NotContains(t, stdout, "Page 2:")
	require.Contains(t, stdout, "\nPage 3:\n")
	require.Contains(t, stdout, "Third page text")
	require.Equal(t, 2, strings.Count(stdout, strings.Repeat("=", 80)))
}

func TestRunPromptsForPath(t *testing.T) {
	path := pdftest.WriteFile(t, "prompt.pdf", pdftest.Page{Text: "Prompted"})

	code, stdout, stderr := runCLI(t, path+"\n")
	require.Equal(t, 0, code, stderr)
	require.True(t, strings.HasPrefix(stdout, "Enter PDF file path: Number of pages: 1\n"), stdout)
	require.Contains(t, stdout, "Prompted")
}

func TestRunRejectsEmptyPrompt(t *testing.T) {
	code, stdout, stderr := runCLI(t, "   \n")
	require.Equal(t, 1, code)
	require.Equal(t, "Enter PDF file path: ", stdout)
	require.Equal(t, "Error: no PDF file path given\n", stderr)

	code, _, stderr = runCLI(t, "")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "no PDF file path given")
}

func TestRunUsageErrors(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "a.pdf", "b.pdf")
	require.Equal(t, 2, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "Usage: pdfocr")
	require.Contains(t, stderr, "Error: expected at most one PDF path, got 2")

	code, _, _ = runCLI(t, "", "-no-such-flag")
	require.Equal(t, 2, code)

	code, _, stderr = runCLI(t, "", "-h")
	require.Equal(t, 0, code)
	require.Contains(t, stderr, "-lang")
}

func TestRunInvalidConfiguration(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "-dpi", "-5", "doc.pdf")
	require.Equal(t, 1, code)
	require.Empty(t, stdout)
	require.True(t, strings.HasPrefix(stderr, "Error: invalid configuration"), stderr)

	code, _, stderr = runCLI(t, "", "-lang", "xx", "doc.pdf")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "unsupported ocr language")

	code, _, stderr = runCLI(t, "", "-config", filepath.Join(t.TempDir(), "none.yaml"), "doc.pdf")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "read config")
}

func TestRunVerboseLogsDiagnostics(t *testing.T) {
	path := pdftest.WriteFile(t, "verbose.pdf", pdftest.Page{Text: "Logged"})

	code, stdout, stderr := runCLI(t, "", "-v", "-log-format", "json", path)
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "Logged")
	require.Contains(t, stderr, `"msg":"page processed"`)
	require.Contains(t, stderr, `"page":1`)
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	flags, err := parseFlags([]string{"-lang", "en", "-dpi", "150", "-validate", "doc.pdf"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "doc.pdf", flags.pdfPath)

	cfg, err := loadConfig(flags)
	require.NoError(t, err)
	require.Equal(t, "eng", cfg.Language)
	require.Equal(t, 150.0, cfg.DPI)
	require.True(t, cfg.Validate)
	require.Equal(t, 3, cfg.PageSegMode)
}
