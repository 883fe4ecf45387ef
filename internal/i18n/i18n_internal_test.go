package i18n

import (
	"testing"
)

func TestNewLocalizer(t *testing.T) {
	localizer, err := NewLocalizer()
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	if localizer == nil {
		t.Fatal("Localizer is nil")
	}

	if _, ok := localizer.translations[English]; !ok {
		t.Error("English translations not loaded")
	}

	if _, ok := localizer.translations[Bengali]; !ok {
		t.Error("Bengali translations not loaded")
	}
}

func TestLocalesHaveSameKeys(t *testing.T) {
	localizer, err := NewLocalizer()
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	for key := range localizer.translations[English] {
		if _, ok := localizer.translations[Bengali][key]; !ok {
			t.Errorf("key %q is missing in the Bengali locale", key)
		}
	}
	for key := range localizer.translations[Bengali] {
		if _, ok := localizer.translations[English][key]; !ok {
			t.Errorf("key %q is missing in the English locale", key)
		}
	}
}

func TestGet(t *testing.T) {
	localizer, err := NewLocalizer()
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	tests := []struct {
		name     string
		lang     string
		key      string
		expected string
	}{
		{
			name:     "English status",
			lang:     English,
			key:      "status.present",
			expected: "Present",
		},
		{
			name:     "Bengali status",
			lang:     Bengali,
			key:      "status.present",
			expected: "উপস্থিত",
		},
		{
			name:     "Fallback to English",
			lang:     "unknown",
			key:      "status.absent",
			expected: "Absent",
		},
		{
			name:     "Non-existent key returns key itself",
			lang:     English,
			key:      "non.existent.key",
			expected: "non.existent.key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := localizer.Get(tt.lang, tt.key)
			if result != tt.expected {
				t.Errorf("Get(%q, %q) = %q, want %q", tt.lang, tt.key, result, tt.expected)
			}
		})
	}
}

func TestGetWithData(t *testing.T) {
	localizer, err := NewLocalizer()
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	tests := []struct {
		name     string
		lang     string
		key      string
		data     map[string]any
		expected string
	}{
		{
			name:     "Replace count in English",
			lang:     English,
			key:      "dashboard.total",
			data:     map[string]any{"count": 12},
			expected: "Total workers: 12",
		},
		{
			name:     "Replace count with Bengali digits",
			lang:     Bengali,
			key:      "dashboard.total",
			data:     map[string]any{"count": 12},
			expected: "মোট শ্রমিক: ১২",
		},
		{
			name:     "Replace multiple placeholders",
			lang:     English,
			key:      "dashboard.last_marked",
			data:     map[string]any{"name": "Rahim", "time": "09:00 AM"},
			expected: "🕒 Last marked: Rahim at 09:00 AM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := localizer.GetWithData(tt.lang, tt.key, tt.data)
			if result != tt.expected {
				t.Errorf("GetWithData(%q, %q) = %q, want %q", tt.lang, tt.key, result, tt.expected)
			}
		})
	}
}

func TestDigits(t *testing.T) {
	if got := Digits(Bengali, "2024-03-15"); got != "২০২৪-০৩-১৫" {
		t.Errorf("Digits(bn) = %q", got)
	}
	if got := Digits(English, "2024-03-15"); got != "2024-03-15" {
		t.Errorf("Digits(en) = %q", got)
	}
	if got := Number(Bengali, 1003); got != "১০০৩" {
		t.Errorf("Number(bn) = %q", got)
	}
}

func TestNormalizeLanguageCode(t *testing.T) {
	tests := []struct {
		input    string
		fallback string
		expected string
	}{
		{"en", Bengali, English},
		{"en-US", Bengali, English},
		{"bn", English, Bengali},
		{"bn-BD", English, Bengali},
		{"BN", English, Bengali},
		{"uk", Bengali, Bengali},
		{"", Bengali, Bengali},
		{"", "fr", English},
		{"x", English, English},
	}

	for _, tt := range tests {
		t.Run(tt.input+"/"+tt.fallback, func(t *testing.T) {
			result := NormalizeLanguageCode(tt.input, tt.fallback)
			if result != tt.expected {
				t.Errorf("NormalizeLanguageCode(%q, %q) = %q, want %q", tt.input, tt.fallback, result, tt.expected)
			}
		})
	}
}
