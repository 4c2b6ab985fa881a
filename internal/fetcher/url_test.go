package fetcher

import (
	"errors"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	const onion = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion"

	testCases := []struct {
		name        string
		input       string
		expected    string
		expectedErr error
	}{
		{"adds https", "example.com", "https://example.com", nil},
		{"trims whitespace", "  example.com/path  ", "https://example.com/path", nil},
		{"keeps http", "http://example.com", "http://example.com", nil},
		{"lowercases scheme", "HTTPS://example.com", "https://example.com", nil},
		{"host with port", "localhost:8080", "https://localhost:8080", nil},
		{"query containing scheme", "example.com/?next=http://x", "https://example.com/?next=http://x", nil},
		{"valid onion", "http://" + onion, "http://" + onion, nil},
		{"empty", "   ", "", ErrEmptyURL},
		{"ftp", "ftp://example.com", "", ErrUnsupportedScheme},
		{"no host", "https://", "", ErrInvalidURL},
		{"bad onion", "http://nothere.onion", "", ErrInvalidURL},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tc.input)
			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("NormalizeURL(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestIsOnionURL(t *testing.T) {
	t.Parallel()

	if !IsOnionURL("http://abc.onion/path") {
		t.Error("expected onion URL")
	}
	if IsOnionURL("https://example.com") {
		t.Error("example.com is not an onion URL")
	}
}
