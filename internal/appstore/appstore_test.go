package appstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHasReceipt(t *testing.T) {
	d := New()

	appPath := filepath.Join(t.TempDir(), "Store App.app")
	if err := os.MkdirAll(filepath.Join(appPath, "Contents", "_MASReceipt"), 0755); err != nil {
		t.Fatal(err)
	}
	if !d.HasReceipt(appPath) {
		t.Error("HasReceipt() = false for bundle with a receipt directory")
	}

	plain := filepath.Join(t.TempDir(), "Plain.app")
	if err := os.MkdirAll(filepath.Join(plain, "Contents"), 0755); err != nil {
		t.Fatal(err)
	}
	if d.HasReceipt(plain) {
		t.Error("HasReceipt() = true for bundle without a receipt")
	}

	// A receipt that is a file, not a directory, does not count.
	fileReceipt := filepath.Join(t.TempDir(), "Odd.app")
	if err := os.MkdirAll(filepath.Join(fileReceipt, "Contents"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fileReceipt, "Contents", "_MASReceipt"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if d.HasReceipt(fileReceipt) {
		t.Error("HasReceipt() = true for a file receipt")
	}
}

func TestMatchesSearch(t *testing.T) {
	tests := []struct {
		name   string
		output string
		app    string
		want   bool
	}{
		{
			name:   "exact hit",
			output: "   497799835  Xcode  (15.2)\n   409183694  Keynote  (13.2)",
			app:    "Xcode",
			want:   true,
		},
		{
			name:   "case insensitive",
			output: "   409183694  Keynote  (13.2)",
			app:    "keynote",
			want:   true,
		},
		{
			name:   "miss",
			output: "   409183694  Keynote  (13.2)",
			app:    "Firefox",
			want:   false,
		},
		{
			name:   "empty output",
			output: "",
			app:    "Anything",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesSearch(tt.output, tt.app); got != tt.want {
				t.Errorf("matchesSearch(%q, %q) = %v, want %v", tt.output, tt.app, got, tt.want)
			}
		})
	}
}
