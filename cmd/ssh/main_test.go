package main

import "testing"

func TestSizeTracker(t *testing.T) {
	s := newSizeTracker(80, 24)
	s.update(120, 40)
	w, h, err := s.getSize()
	if err != nil || w != 120 || h != 40 {
		t.Fatalf("expected 120x40, got=%dx%d (%v)", w, h, err)
	}
}

func TestGameHandlerTracksSessions(t *testing.T) {
	g := &gameHandler{}
	g.track(1)
	g.track(1)
	g.track(-1)
	if got := g.active(); got != 1 {
		t.Fatalf("expected 1 active session, got=%d", got)
	}
}
