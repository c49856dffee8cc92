package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApps(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"beta.app", "Alpha.app", "Zulu.app"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// Noise that must be ignored: a plain directory and a file.
	if err := os.Mkdir(filepath.Join(dir, "NotAnApp"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.app"), []byte("a file, not a bundle"), 0644); err != nil {
		t.Fatal(err)
	}

	apps, err := Apps(dir)
	if err != nil {
		t.Fatalf("Apps() error = %v", err)
	}

	if len(apps) != 3 {
		t.Fatalf("Apps() returned %d entries, want 3: %v", len(apps), apps)
	}

	// Sorted case-insensitively, names keep the .app suffix, paths are
	// absolute.
	wantOrder := []string{"Alpha.app", "beta.app", "Zulu.app"}
	for i, want := range wantOrder {
		if apps[i].Name != want {
			t.Errorf("apps[%d].Name = %q, want %q", i, apps[i].Name, want)
		}
		if apps[i].Path != filepath.Join(dir, want) {
			t.Errorf("apps[%d].Path = %q", i, apps[i].Path)
		}
	}
}

func TestAppsEmptyDir(t *testing.T) {
	apps, err := Apps(t.TempDir())
	if err != nil {
		t.Fatalf("Apps() error = %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("Apps() = %v, want empty", apps)
	}
}

func TestAppsMissingDir(t *testing.T) {
	if _, err := Apps(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("Apps() succeeded on a missing directory")
	}
}
