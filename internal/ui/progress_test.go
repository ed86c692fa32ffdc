package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"castor/internal/conv"
)

func feed(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestProgressModelTracksRows(t *testing.T) {
	m := NewProgressModel("matrix", []string{"Dog", "Animal"}, 2, nil)
	m = feed(m,
		eventMsg{Index: 0, Status: conv.BatchStarted},
		eventMsg{Index: 0, Status: conv.BatchDone, Kind: conv.Identity},
		eventMsg{Index: 1, Status: conv.BatchStarted},
		eventMsg{Index: 1, Status: conv.BatchDone, Kind: conv.ImplicitReference},
		eventMsg{Index: 2, Status: conv.BatchStarted},
	)
	view := m.View()
	for _, want := range []string{"matrix (2/4)", "done", "Dog", "2/2 convert", "classifying", "Animal"} {
		if !strings.Contains(view, want) {
			t.Fatalf("missing %q in view:\n%s", want, view)
		}
	}

	m = feed(m,
		eventMsg{Index: 2, Status: conv.BatchDone, Kind: conv.None},
		eventMsg{Index: 3, Status: conv.BatchStarted},
		eventMsg{Index: 3, Status: conv.BatchDone, Kind: conv.Ambiguous},
		doneMsg{},
	)
	view = m.View()
	for _, want := range []string{"done: matrix (4/4)", "ambiguous", "0/2 convert"} {
		if !strings.Contains(view, want) {
			t.Fatalf("missing %q in view:\n%s", want, view)
		}
	}
	if Aborted(m) {
		t.Fatalf("finished batch reported as aborted")
	}
}

func TestProgressModelIgnoresStrayEvents(t *testing.T) {
	m := NewProgressModel("batch", []string{"int"}, 1, nil)
	m = feed(m, eventMsg{Index: 5, Status: conv.BatchDone}, eventMsg{Index: -1, Status: conv.BatchDone})
	if !strings.Contains(m.View(), "batch (0/1)") {
		t.Fatalf("stray events were counted:\n%s", m.View())
	}
}

func TestProgressModelQuitOnCtrlC(t *testing.T) {
	m := NewProgressModel("batch", []string{"int"}, 1, nil)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !Aborted(m) {
		t.Fatalf("ctrl+c should abort and quit")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("IEnumerable<Animal>", 10); got != "IEnumer..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("IEnumerable<Animal>", 10); runewidth.StringWidth(got) != 10 {
		t.Fatalf("%q must fill the 10 columns it was given", got)
	}
	if got := truncate("IEnumerable<Animal>", 3); got != "IEn" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("Dog", 10); got != "Dog" {
		t.Fatalf("got %q", got)
	}
}
