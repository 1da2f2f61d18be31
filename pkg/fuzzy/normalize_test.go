package fuzzy

import "testing"

func TestNormalizer_NormalizeTitle(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple title",
			input:    "Shape of You",
			expected: "shape of you",
		},
		{
			name:     "Featuring credit in parens",
			input:    "Peaches (feat. Daniel Caesar & Giveon)",
			expected: "peaches",
		},
		{
			name:     "Ft abbreviation",
			input:    "Lose Control ft. Ciara",
			expected: "lose control",
		},
		{
			name:     "Remaster suffix",
			input:    "Bohemian Rhapsody (Remastered 2011)",
			expected: "bohemian rhapsody",
		},
		{
			name:     "Live version suffix",
			input:    "One [Live in Paris]",
			expected: "one",
		},
		{
			name:     "Diacritics stripped",
			input:    "Señorita",
			expected: "senorita",
		},
		{
			name:     "Punctuation removed",
			input:    "What's Up?",
			expected: "what s up",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizer.NormalizeTitle(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizer_Similarity(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name string
		s1   string
		s2   string
		min  float64
		max  float64
	}{
		{
			name: "Identical strings",
			s1:   "shape of you",
			s2:   "shape of you",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "Empty string",
			s1:   "",
			s2:   "anything",
			min:  0.0,
			max:  0.0,
		},
		{
			name: "Close match",
			s1:   "shape of you",
			s2:   "shape of u",
			min:  0.8,
			max:  1.0,
		},
		{
			name: "Unrelated strings",
			s1:   "shape of you",
			s2:   "bohemian rhapsody",
			min:  0.0,
			max:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizer.Similarity(tt.s1, tt.s2)
			if result < tt.min || result > tt.max {
				t.Errorf("Similarity(%q, %q) = %f, want in [%f, %f]",
					tt.s1, tt.s2, result, tt.min, tt.max)
			}
		})
	}
}

func TestNormalizer_Score(t *testing.T) {
	normalizer := NewNormalizer()

	// A query mentioning the artist must not score worse than the bare title.
	titleOnly := normalizer.Score("shape of you", "Shape of You", "Ed Sheeran")
	withArtist := normalizer.Score("shape of you ed sheeran", "Shape of You", "Ed Sheeran")
	if withArtist < titleOnly {
		t.Errorf("Score with artist = %f, below title-only score %f", withArtist, titleOnly)
	}
	if withArtist < 0.9 {
		t.Errorf("Score for exact title+artist query = %f, want near 1", withArtist)
	}

	// The right track scores above an unrelated one.
	right := normalizer.Score("shape of you", "Shape of You", "Ed Sheeran")
	wrong := normalizer.Score("shape of you", "Blinding Lights", "The Weeknd")
	if right <= wrong {
		t.Errorf("Score right = %f, wrong = %f; want right > wrong", right, wrong)
	}
}
