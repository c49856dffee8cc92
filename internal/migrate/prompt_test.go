package migrate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/blackwell-systems/brewhaul/internal/catalog"
)

func promptTasks(n int) []*Task {
	tasks := make([]*Task, n)
	for i := range tasks {
		tasks[i] = &Task{AppName: "App.app", Target: "app"}
	}
	return tasks
}

func TestSelectModeChoices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantMode    Mode
		wantIndices []int
	}{
		{"review each", "1\n", ModeEach, nil},
		{"default is review each", "\n", ModeEach, nil},
		{"migrate all", "3\n", ModeAll, nil},
		{"invalid then valid", "7\n3\n", ModeAll, nil},
		{"select indices", "2\n1,3\n", ModeSelect, []int{1, 3}},
		{"select all keyword", "2\nall\n", ModeSelect, []int{1, 2, 3}},
		{"select none cancels", "2\nnone\n", ModeCancel, nil},
		{"select bad entries skipped", "2\n1, x, 2\n", ModeSelect, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewConsolePrompter(strings.NewReader(tt.input), &out)

			mode, indices := p.SelectMode(promptTasks(3))
			if mode != tt.wantMode {
				t.Fatalf("mode = %v, want %v", mode, tt.wantMode)
			}
			if len(indices) != len(tt.wantIndices) {
				t.Fatalf("indices = %v, want %v", indices, tt.wantIndices)
			}
			for i := range indices {
				if indices[i] != tt.wantIndices[i] {
					t.Errorf("indices = %v, want %v", indices, tt.wantIndices)
					break
				}
			}
		})
	}
}

func TestConfirmAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"n\n", false},
		{"\n", false},
		{"yes\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		p := NewConsolePrompter(strings.NewReader(tt.input), &out)
		if got := p.ConfirmAll(3); got != tt.want {
			t.Errorf("ConfirmAll with input %q = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestChooseCandidate(t *testing.T) {
	cands := []catalog.Match{
		{Token: "firefox", Description: "Web browser"},
		{Token: "firefox@beta"},
	}

	tests := []struct {
		name      string
		input     string
		wantIndex int
		wantOK    bool
	}{
		{"first", "1\n", 0, true},
		{"second", "2\n", 1, true},
		{"skip keyword", "skip\n", 0, false},
		{"s shorthand", "s\n", 0, false},
		{"empty skips", "\n", 0, false},
		{"out of range then valid", "9\n2\n", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewConsolePrompter(strings.NewReader(tt.input), &out)

			idx, ok := p.ChooseCandidate("Firefox.app", cands)
			if ok != tt.wantOK || idx != tt.wantIndex {
				t.Errorf("ChooseCandidate() = (%d, %v), want (%d, %v)", idx, ok, tt.wantIndex, tt.wantOK)
			}
		})
	}
}
