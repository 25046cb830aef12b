package config

import (
	"regexp"
	"strings"

	"github.com/go-text/typesetting/language"
	"github.com/rotisserie/eris"
)

var (
	// tesseractCode matches traineddata names such as "jpn", "chi_sim" or
	// "chi_sim_vert".
	tesseractCode = regexp.MustCompile(`^[a-z]{3}(_[a-z]+)*$`)
	// scriptModel matches script traineddata such as "script/Japanese".
	// Their file names are case sensitive.
	scriptModel = regexp.MustCompile(`^script/[A-Za-z]+(_[A-Za-z]+)*$`)
)

// primaryToTesseract maps BCP-47 primary subtags to Tesseract traineddata names.
var primaryToTesseract = map[language.Language]string{
	"ar": "ara",
	"bn": "ben",
	"cs": "ces",
	"da": "dan",
	"de": "deu",
	"el": "ell",
	"en": "eng",
	"es": "spa",
	"fa": "fas",
	"fi": "fin",
	"fr": "fra",
	"he": "heb",
	"hi": "hin",
	"hu": "hun",
	"id": "ind",
	"it": "ita",
	"ja": "jpn",
	"ko": "kor",
	"nl": "nld",
	"no": "nor",
	"pl": "pol",
	"pt": "por",
	"ro": "ron",
	"ru": "rus",
	"sv": "swe",
	"th": "tha",
	"tr": "tur",
	"uk": "ukr",
	"vi": "vie",
	"zh": "chi_sim",
}

// NormalizeLanguage converts an OCR language setting into Tesseract codes
// joined by "+". Each "+"-separated part may already be a Tesseract code
// ("jpn", "chi_tra") or a BCP-47 tag ("ja", "en-US", "zh-Hant").
func NormalizeLanguage(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", eris.New("ocr language must not be empty")
	}
	parts := strings.Split(value, "+")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		code, err := normalizePart(strings.TrimSpace(part))
		if err != nil {
			return "", err
		}
		codes = append(codes, code)
	}
	return strings.Join(codes, "+"), nil
}

func normalizePart(part string) (string, error) {
	if part == "" {
		return "", eris.New("ocr language contains an empty entry")
	}
	if scriptModel.MatchString(part) {
		return part, nil
	}
	if code := strings.ToLower(part); tesseractCode.MatchString(code) {
		return code, nil
	}
	tag := language.NewLanguage(part)
	primary := tag.Primary()
	if primary == "zh" && isTraditionalChinese(tag) {
		return "chi_tra", nil
	}
	if code, ok := primaryToTesseract[primary]; ok {
		return code, nil
	}
	return "", eris.Errorf("unsupported ocr language %q", part)
}

func isTraditionalChinese(tag language.Language) bool {
	for _, sub := range strings.Split(string(tag), "-")[1:] {
		switch sub {
		case "hant", "tw", "hk", "mo":
			return true
		}
	}
	return false
}

// Languages splits a normalized language setting into its codes.
func Languages(normalized string) []string {
	return strings.Split(normalized, "+")
}
