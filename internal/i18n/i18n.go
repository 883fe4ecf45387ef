package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localesFS embed.FS

const (
	English = "en"
	Bengali = "bn"
)

// Languages lists the supported language codes.
var Languages = []string{English, Bengali}

// bengaliDigits maps ASCII digits to Bengali numerals.
var bengaliDigits = strings.NewReplacer(
	"0", "০", "1", "১", "2", "২", "3", "৩", "4", "৪",
	"5", "৫", "6", "৬", "7", "৭", "8", "৮", "9", "৯",
)

// Localizer handles translation for different languages.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer creates a new Localizer instance and loads all translations.
func NewLocalizer() (*Localizer, error) {
	locale := &Localizer{
		translations: make(map[string]map[string]string),
	}

	for _, lang := range Languages {
		if err := locale.loadLanguage(lang); err != nil {
			return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	return locale, nil
}

// loadLanguage loads translations for a specific language from embedded JSON files.
func (l *Localizer) loadLanguage(lang string) error {
	filename := fmt.Sprintf("locales/%s.json", lang)
	data, err := localesFS.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read locale file %s: %w", filename, err)
	}

	var translations map[string]string
	if err = json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to unmarshal locale file %s: %w", filename, err)
	}

	l.mu.Lock()
	l.translations[lang] = translations
	l.mu.Unlock()

	return nil
}

// Get returns the translation for the given key in the specified language.
// Missing keys fall back to English, then to the key itself.
func (l *Localizer) Get(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if translation, exists := langTranslations[key]; exists {
			return translation
		}
	}

	if lang != English {
		if enTranslations, ok := l.translations[English]; ok {
			if translation, exists := enTranslations[key]; exists {
				return translation
			}
		}
	}

	return key
}

// GetWithData returns the translation for the given key with {placeholder} replacement.
// Integer values are rendered with the digits of the language.
// Example: GetWithData("en", "dashboard.total", map[string]any{"count": 3}).
func (l *Localizer) GetWithData(lang, key string, data map[string]any) string {
	translation := l.Get(lang, key)

	for k, v := range data {
		var value string
		switch typed := v.(type) {
		case int:
			value = Number(lang, typed)
		default:
			value = fmt.Sprintf("%v", v)
		}
		translation = strings.ReplaceAll(translation, "{"+k+"}", value)
	}

	return translation
}

// Number formats n with the digits of lang.
func Number(lang string, n int) string {
	return Digits(lang, strconv.Itoa(n))
}

// Digits rewrites the ASCII digits of s into the numerals of lang.
func Digits(lang, s string) string {
	if lang == Bengali {
		return bengaliDigits.Replace(s)
	}
	return s
}

// NormalizeLanguageCode maps Telegram language codes to a supported language.
// Unknown or empty codes resolve to fallback.
func NormalizeLanguageCode(telegramLang, fallback string) string {
	// Handle language codes like "bn-BD" -> "bn"
	const langCodeShortLength = 2
	if len(telegramLang) >= langCodeShortLength {
		switch strings.ToLower(telegramLang[:langCodeShortLength]) {
		case English:
			return English
		case Bengali:
			return Bengali
		}
	}

	if IsSupported(fallback) {
		return fallback
	}
	return English
}

// IsSupported reports whether lang has a locale.
func IsSupported(lang string) bool {
	for _, supported := range Languages {
		if lang == supported {
			return true
		}
	}
	return false
}
