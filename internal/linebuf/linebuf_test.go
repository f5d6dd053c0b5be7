// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package linebuf

import (
	"strings"
	"testing"
)

func feed(a *Assembler, s string) {
	for i := 0; i < len(s); i++ {
		a.Consume(s[i])
	}
}

func TestSingleSentence(t *testing.T) {
	a := New(DefaultCapacity)
	feed(a, "$GPGGA,1,2,3*00\r\n")

	if !a.Available() {
		t.Fatal("expected a completed sentence")
	}
	line := a.Take()
	if line.Text != "$GPGGA,1,2,3*00\r" {
		t.Errorf("expected: %q, got: %q", "$GPGGA,1,2,3*00\r", line.Text)
	}
	if line.Truncated {
		t.Error("line should not be truncated")
	}
	if a.Available() {
		t.Error("Take should clear the availability flag")
	}
}

func TestStartMarkerDiscardsPartial(t *testing.T) {
	tables := []struct {
		in       string
		expected string
	}{
		{"garbage$GPRMC,1\n", "$GPRMC,1"},
		{"$GPGGA,12$GPRMC,1\n", "$GPRMC,1"},
		{"$$$X\n", "$X"},
		{"no marker\n", "no marker"},
		{"\n", ""},
	}

	for _, table := range tables {
		a := New(DefaultCapacity)
		feed(a, table.in)
		out := a.Take().Text
		if out != table.expected {
			t.Errorf("%q expected: %q, got: %q", table.in, table.expected, out)
		}
	}
}

func TestLastWriteWins(t *testing.T) {
	a := New(DefaultCapacity)
	feed(a, "$FIRST\n$SECOND\n")

	if got := a.Take().Text; got != "$SECOND" {
		t.Errorf("expected: %q, got: %q", "$SECOND", got)
	}
	if a.Overruns() != 1 {
		t.Errorf("expected 1 overrun, got %d", a.Overruns())
	}
	if a.Available() {
		t.Error("only one sentence should be available")
	}
}

func TestTruncation(t *testing.T) {
	a := New(16)
	long := "$" + strings.Repeat("A", 40)
	feed(a, long)
	if a.Pending() != 15 {
		t.Errorf("cursor should clamp at capacity-1, got %d", a.Pending())
	}
	feed(a, "\n")

	line := a.Take()
	if line.Text != long[:15] {
		t.Errorf("expected: %q, got: %q", long[:15], line.Text)
	}
	if !line.Truncated {
		t.Error("line should be flagged as truncated")
	}

	// exactly capacity-1 characters fit
	feed(a, "$"+strings.Repeat("B", 14)+"\n")
	line = a.Take()
	if line.Truncated || len(line.Text) != 15 {
		t.Errorf("unexpected truncation of %q", line.Text)
	}
}

func TestGrowthWithoutDelimiters(t *testing.T) {
	a := New(8)
	for i := 0; i < 100; i++ {
		a.Consume('x')
		want := i + 1
		if want > 7 {
			want = 7
		}
		if a.Pending() != want {
			t.Fatalf("after %d bytes expected %d pending, got %d", i+1, want, a.Pending())
		}
	}
	if a.Available() {
		t.Error("nothing should complete without a terminator")
	}
}

func TestTruncationClearedOnNextLine(t *testing.T) {
	a := New(8)
	feed(a, "$0123456789\n$ok\n")
	line := a.Take()
	if line.Text != "$ok" || line.Truncated {
		t.Errorf("unexpected line %+v", line)
	}
}

func TestPauseKeepsPartialLine(t *testing.T) {
	a := New(DefaultCapacity)
	feed(a, "$GPR")
	a.Pause(true)
	if a.Consume('X') {
		t.Error("Consume should refuse bytes while paused")
	}
	feed(a, "junk\n")
	if a.Available() || a.Pending() != 4 {
		t.Fatalf("paused assembler changed state, pending %d", a.Pending())
	}
	a.Pause(false)
	feed(a, "MC\n")
	if got := a.Take().Text; got != "$GPRMC" {
		t.Errorf("expected: %q, got: %q", "$GPRMC", got)
	}
}

func TestViewAliasesBuffer(t *testing.T) {
	a := New(DefaultCapacity)
	feed(a, "$ONE\n")
	v := a.View()
	if string(v) != "$ONE" {
		t.Fatalf("expected: %q, got: %q", "$ONE", v)
	}
	if a.Available() {
		t.Error("View should clear the availability flag")
	}

	// the sentence after next lands in the same buffer
	feed(a, "$TWO\n$XYZ\n")
	if string(v) != "$XYZ" {
		t.Errorf("view should see the overwritten buffer, got %q", v)
	}
}

func TestClear(t *testing.T) {
	a := New(DefaultCapacity)
	feed(a, "$A\n")
	a.Clear()
	if a.Available() {
		t.Error("Clear should drop the availability flag")
	}
}

func TestReset(t *testing.T) {
	a := New(DefaultCapacity)
	feed(a, "$A\n$B\n$PART")
	a.Reset()
	if a.Available() || a.Pending() != 0 {
		t.Errorf("Reset should drop both lines, available=%v pending=%d", a.Available(), a.Pending())
	}
	if a.Overruns() != 1 {
		t.Errorf("expected the overrun count to survive, got %d", a.Overruns())
	}
	feed(a, "IAL\n")
	if got := a.Take().Text; got != "IAL" {
		t.Errorf("expected: %q, got: %q", "IAL", got)
	}
}

func TestCapacity(t *testing.T) {
	tables := []struct {
		in       int
		expected int
	}{
		{16, 16},
		{2, 2},
		{1, DefaultCapacity},
		{0, DefaultCapacity},
	}

	for _, table := range tables {
		if got := New(table.in).Capacity(); got != table.expected {
			t.Errorf("New(%d): expected capacity %d, got %d", table.in, table.expected, got)
		}
	}
}
