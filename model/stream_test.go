package model

import (
	"strings"
	"testing"
)

func TestStreamEntryValidate(t *testing.T) {
	tests := []struct {
		name  string
		entry StreamEntry
		ok    bool
	}{
		{"valid http", StreamEntry{Name: "BBC", URL: "http://x/1"}, true},
		{"valid https", StreamEntry{Name: "BBC", URL: "https://x/1"}, true},
		{"empty name", StreamEntry{Name: "", URL: "http://x/1"}, false},
		{"empty url", StreamEntry{Name: "BBC", URL: ""}, false},
		{"file scheme", StreamEntry{Name: "BBC", URL: "file:///etc"}, false},
		{"no scheme", StreamEntry{Name: "BBC", URL: "example.com/1"}, false},
		{"name at limit", StreamEntry{Name: strings.Repeat("a", MaxStationNameLen), URL: "http://x/1"}, true},
		{"name over limit", StreamEntry{Name: strings.Repeat("a", MaxStationNameLen+1), URL: "http://x/1"}, false},
		{"url over limit", StreamEntry{Name: "BBC", URL: "http://" + strings.Repeat("a", MaxStationURLLen)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() error = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("Validate() = nil, want error")
			}
		})
	}
}

func TestValidStreamURL(t *testing.T) {
	if !ValidStreamURL("http://x/1") || !ValidStreamURL("https://x/1") {
		t.Fatal("http/https urls rejected")
	}
	for _, u := range []string{"", "ftp://x", "httpx://x", "x"} {
		if ValidStreamURL(u) {
			t.Errorf("ValidStreamURL(%q) = true", u)
		}
	}
}
