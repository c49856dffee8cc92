package brew

import (
	"context"
	"testing"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantPhase  Phase
		wantDetail string
		wantOK     bool
	}{
		{
			name:       "download with percent",
			line:       "==> Downloading https://example.com/app.dmg 42%",
			wantPhase:  PhaseDownloading,
			wantDetail: "42%",
			wantOK:     true,
		},
		{
			name:      "download without percent",
			line:      "==> Downloading https://example.com/app.dmg",
			wantPhase: PhaseDownloading,
			wantOK:    true,
		},
		{
			name:      "checksum verification",
			line:      "==> Verifying checksum for cask 'keka'",
			wantPhase: PhaseVerifying,
			wantOK:    true,
		},
		{
			name:      "extracting",
			line:      "==> Extracting app bundle",
			wantPhase: PhaseExtracting,
			wantOK:    true,
		},
		{
			name:      "installing",
			line:      "==> Installing Cask keka",
			wantPhase: PhaseInstalling,
			wantOK:    true,
		},
		{
			name:      "moving counts as installing",
			line:      "==> Moving App 'Keka.app' to '/Applications/Keka.app'",
			wantPhase: PhaseInstalling,
			wantOK:    true,
		},
		{
			name:      "linking",
			line:      "==> Linking Binary 'keka' to '/opt/homebrew/bin/keka'",
			wantPhase: PhaseLinking,
			wantOK:    true,
		},
		{
			name:   "unrecognized line ignored",
			line:   "🍺  keka was successfully installed!",
			wantOK: false,
		},
		{
			name:   "empty line ignored",
			line:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase, detail, ok := classifyLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("classifyLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if phase != tt.wantPhase {
				t.Errorf("phase = %v, want %v", phase, tt.wantPhase)
			}
			if detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", detail, tt.wantDetail)
			}
		})
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseDownloading, "downloading"},
		{PhaseVerifying, "verifying"},
		{PhaseExtracting, "extracting"},
		{PhaseInstalling, "installing"},
		{PhaseLinking, "linking"},
		{Phase(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestInstallRejectsInvalidToken(t *testing.T) {
	if err := Install(context.Background(), "bad;token", nil); err == nil {
		t.Error("Install() accepted a token with shell metacharacters")
	}
}
