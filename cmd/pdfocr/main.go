package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wudi/pdfocr/config"
	"github.com/wudi/pdfocr/document"
	"github.com/wudi/pdfocr/extractor"
	"github.com/wudi/pdfocr/observability"
	"github.com/wudi/pdfocr/ocr"
	"github.com/wudi/pdfocr/ocr/tesseract"
	"github.com/wudi/pdfocr/report"
)

// UserInputError reports a missing or unusable path from the user.
type UserInputError struct {
	Reason string
}

func (e *UserInputError) Error() string { return e.Reason }

type flagValues struct {
	pdfPath    string
	configPath string
	envFile    string
	listLangs  bool
	verbose    bool

	lang      string
	dpi       float64
	psm       int
	tessdata  string
	password  string
	validate  bool
	timeout   time.Duration
	logLevel  string
	logFormat string

	set map[string]bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	zl, err := observability.NewZap(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = zl.Sync() }()
	logger := observability.NewZapLogger(zl)

	if flags.listLangs {
		if err := listLanguages(stdout, cfg); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := extract(cfg, flags.pdfPath, logger, stdin, stdout); err != nil {
		logger.Debug("extraction failed", observability.Error("error", err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (flagValues, error) {
	var v flagValues
	fs := flag.NewFlagSet("pdfocr", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pdfocr [flags] [path-to-pdf]\n\n")
		fmt.Fprintf(fs.Output(), "Extracts the text of every page, using OCR for pages that only contain images.\n")
		fmt.Fprintf(fs.Output(), "Without a path the program asks for one on standard input.\n\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&v.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&v.envFile, "env-file", ".env", "File of PDFOCR_* variables to load; ignored when missing")
	fs.BoolVar(&v.listLangs, "list-langs", false, "Print the installed OCR languages and exit")
	fs.BoolVar(&v.verbose, "v", false, "Log per-page diagnostics (same as -log-level debug)")
	fs.StringVar(&v.lang, "lang", "", "OCR language: Tesseract codes joined by '+' or BCP-47 tags (default jpn)")
	fs.Float64Var(&v.dpi, "dpi", 0, "Resolution pages are rendered at for OCR (default 300)")
	fs.IntVar(&v.psm, "psm", 0, "Tesseract page segmentation mode, 0-13 (default 3)")
	fs.StringVar(&v.tessdata, "tessdata", "", "Directory containing Tesseract traineddata files")
	fs.StringVar(&v.password, "password", "", "Password to open encrypted PDFs")
	fs.BoolVar(&v.validate, "validate", false, "Validate the PDF structure before extracting")
	fs.DurationVar(&v.timeout, "timeout", 0, "Abort extraction after this long, e.g. 2m (default no limit)")
	fs.StringVar(&v.logLevel, "log-level", "", "Log level: debug, info, warn, error (default warn)")
	fs.StringVar(&v.logFormat, "log-format", "", "Log format: console or json (default console)")

	if err := fs.Parse(args); err != nil {
		return flagValues{}, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return flagValues{}, fmt.Errorf("expected at most one PDF path, got %d", fs.NArg())
	}
	v.pdfPath = fs.Arg(0)
	v.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { v.set[f.Name] = true })
	return v, nil
}

// loadConfig layers explicitly set flags over the file and environment
// configuration.
func loadConfig(v flagValues) (config.Config, error) {
	if err := config.LoadEnvFile(v.envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(v.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if v.set["lang"] {
		cfg.Language = v.lang
	}
	if v.set["dpi"] {
		cfg.DPI = v.dpi
	}
	if v.set["psm"] {
		cfg.PageSegMode = v.psm
	}
	if v.set["tessdata"] {
		cfg.TessdataPrefix = v.tessdata
	}
	if v.set["password"] {
		cfg.Password = v.password
	}
	if v.set["validate"] {
		cfg.Validate = v.validate
	}
	if v.set["timeout"] {
		cfg.Timeout = v.timeout
	}
	if v.set["log-level"] {
		cfg.Log.Level = v.logLevel
	}
	if v.set["log-format"] {
		cfg.Log.Format = v.logFormat
	}
	if v.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Check(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func extract(cfg config.Config, path string, logger observability.Logger, stdin io.Reader, stdout io.Writer) error {
	if path == "" {
		var err error
		if path, err = promptPath(stdin, stdout); err != nil {
			return err
		}
	}

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	res, err := newExtractor(cfg, logger).Extract(ctx, path)
	if err != nil {
		return err
	}
	if err := report.Write(stdout, res); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func promptPath(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "Enter PDF file path: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read PDF file path: %w", err)
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", &UserInputError{Reason: "no PDF file path given"}
	}
	return path, nil
}

func newExtractor(cfg config.Config, logger observability.Logger) *extractor.Extractor {
	tracer := observability.NewLogTracer(logger)
	reader := document.NewReader(document.Options{
		DPI:      cfg.DPI,
		Password: cfg.Password,
		Validate: cfg.Validate,
		Logger:   logger,
		Tracer:   tracer,
	})
	var engineOpts []tesseract.Option
	if cfg.TessdataPrefix != "" {
		engineOpts = append(engineOpts, tesseract.WithTessdataPrefix(cfg.TessdataPrefix))
	}
	recognizer := ocr.NewRecognizer(tesseract.NewEngine(engineOpts...), logger,
		ocr.WithLanguages(config.Languages(cfg.Language)...),
		ocr.WithDPI(int(cfg.DPI)),
		ocr.WithTesseractPSM(cfg.PageSegMode),
	)
	return extractor.New(reader, recognizer,
		extractor.WithLogger(logger),
		extractor.WithTracer(tracer),
	)
}

func listLanguages(stdout io.Writer, cfg config.Config) error {
	if cfg.TessdataPrefix != "" {
		if err := os.Setenv("TESSDATA_PREFIX", cfg.TessdataPrefix); err != nil {
			return fmt.Errorf("set TESSDATA_PREFIX: %w", err)
		}
	}
	langs, err := tesseract.AvailableLanguages()
	if err != nil {
		return fmt.Errorf("list OCR languages: %w", err)
	}
	for _, lang := range langs {
		fmt.Fprintln(stdout, lang)
	}
	return nil
}
