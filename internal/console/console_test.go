package console

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomz197/airclash/internal/config"
	"github.com/tomz197/airclash/internal/level"
	"github.com/tomz197/airclash/internal/physics"
)

func newConsole(t *testing.T) (*Console, *level.Level) {
	t.Helper()
	l := level.New(config.Default(), nil)
	l.SetDescription(level.Description{
		Name:     "flat",
		Width:    800,
		Geometry: []physics.Vector{physics.Vec(0, 100), physics.Vec(800, 100)},
	})
	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	return New(l, nil), l
}

func TestExecute(t *testing.T) {
	c, l := newConsole(t)

	tests := []struct {
		line string
		want string
	}{
		{"help", "Available commands: get help levelinfo reset set"},
		{"help set", "Syntax: set <key> <value>"},
		{"levelinfo", "Bodies: 8"},
		{"get draw_contacts", "draw_contacts: 0"},
		{"set draw_contacts 1", "set: draw_contacts to 1"},
		{"draw_contacts", "draw_contacts: 1"},
		{"  reset  ", "level reset"},
	}
	for _, tt := range tests {
		out, err := c.Execute(tt.line)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.line, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Fatalf("%q: expected output containing %q, got=%q", tt.line, tt.want, out)
		}
	}
	if !l.Config().DrawContacts {
		t.Fatal("expected set to reach the level config")
	}
}

func TestExecuteErrors(t *testing.T) {
	c, l := newConsole(t)

	tests := []struct {
		line string
		want error
	}{
		{"fly", ErrUnknownCommand},
		{"help fly", ErrUnknownCommand},
		{"levelinfo now", ErrUsage},
		{"set draw_contacts", ErrUsage},
		{"set nope 1", config.ErrUnknownKey},
		{"set sub_steps zero", config.ErrInvalid},
		{"set sub_steps 0", config.ErrInvalid},
	}
	for _, tt := range tests {
		if _, err := c.Execute(tt.line); !errors.Is(err, tt.want) {
			t.Fatalf("%q: expected %v, got=%v", tt.line, tt.want, err)
		}
	}
	if l.Config().SubSteps != 5 {
		t.Fatalf("expected failed set to keep sub_steps, got=%d", l.Config().SubSteps)
	}
	if out, err := c.Execute("   "); out != "" || err != nil {
		t.Fatalf("expected blank line to be ignored, got=%q %v", out, err)
	}
}

func TestHistory(t *testing.T) {
	c, _ := newConsole(t)
	_, _ = c.Execute("get player_name")
	_, _ = c.Execute("fly")

	h := c.History(0)
	if len(h) != 4 {
		t.Fatalf("expected 4 history lines, got=%q", h)
	}
	if h[0] != Prompt+"get player_name" || h[1] != "player_name: player" {
		t.Fatalf("unexpected history start: %q", h[:2])
	}
	if last := c.History(1); len(last) != 1 || !strings.Contains(last[0], "not recognized") {
		t.Fatalf("expected error as last line, got=%q", last)
	}

	for range historyLimit {
		_, _ = c.Execute("get level")
	}
	if got := len(c.History(0)); got != historyLimit {
		t.Fatalf("expected history capped at %d, got=%d", historyLimit, got)
	}
}
