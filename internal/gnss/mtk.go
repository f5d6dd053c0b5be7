// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tevino/abool/v2"

	"gitlab.com/postmarketOS/mtk_gnss/internal/gps"
	"gitlab.com/postmarketOS/mtk_gnss/internal/linebuf"
	"gitlab.com/postmarketOS/mtk_gnss/internal/nmea"
)

const (
	DefaultAttempts     = 5
	DefaultTimeout      = 2 * time.Second
	DefaultPollInterval = 10 * time.Millisecond
	// DefaultMatchWindow is how many leading bytes of a sentence are searched
	// for an expected response, so a match may end on the 20th byte.
	DefaultMatchWindow = 20
)

type Options struct {
	MaxLineLength int
	Checksum      gps.ChecksumPolicy
	StrictNumbers bool

	// Attempts is the default number of sentences a handshake looks at
	// before giving up.
	Attempts int
	// Timeout bounds every handshake regardless of attempts. Zero disables
	// the time bound.
	Timeout      time.Duration
	PollInterval time.Duration
	MatchWindow  int

	// Standby is the receiver's power mode when the driver is created.
	Standby bool

	Clock Clock
	// Verbose logs every completed sentence and command.
	Verbose bool
}

// Mtk drives a MediaTek receiver over a byte-at-a-time link. It is meant to
// be used from a single goroutine.
type Mtk struct {
	port    Transport
	opts    Options
	clock   Clock
	lines   *linebuf.Assembler
	decoder *gps.Decoder

	fix     gps.Fix
	status  LoggerStatus
	standby *abool.AtomicBool
}

func New(port Transport, opts Options) *Mtk {
	if opts.MaxLineLength == 0 {
		opts.MaxLineLength = linebuf.DefaultCapacity
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MatchWindow <= 0 {
		opts.MatchWindow = DefaultMatchWindow
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}

	decoder := gps.NewDecoder()
	decoder.Checksum = opts.Checksum
	decoder.Strict = opts.StrictNumbers

	standby := abool.New()
	standby.SetTo(opts.Standby)

	return &Mtk{
		port:    port,
		opts:    opts,
		clock:   clock,
		lines:   linebuf.New(opts.MaxLineLength),
		decoder: decoder,
		standby: standby,
	}
}

// Attach switches the driver to a new transport, e.g. after the device was
// reopened. The fix, logger status and power mode carry over. Anything
// assembled from the old transport is dropped.
func (m *Mtk) Attach(port Transport) {
	m.port = port
	m.lines.Reset()
}

// Read moves one byte from the device into the line assembler. It returns
// false if no byte was pending or ingestion is paused.
func (m *Mtk) Read() (c byte, ok bool) {
	if m.lines.Paused() {
		return
	}
	if c, ok = m.port.ReadAvailable(); !ok {
		return
	}
	m.lines.Consume(c)
	if c == '\n' && m.opts.Verbose {
		log.Printf("read: %s", strings.TrimRight(m.lines.Peek(), "\r"))
	}
	return
}

// Available reports whether a new sentence has been completed.
func (m *Mtk) Available() bool {
	return m.lines.Available()
}

// Take returns the last completed sentence and marks it as consumed.
func (m *Mtk) Take() linebuf.Line {
	return m.lines.Take()
}

// Pause suspends (true) or resumes (false) reading from the device. Bytes
// stay queued in the transport while paused.
func (m *Mtk) Pause(p bool) {
	m.lines.Pause(p)
}

// Fix returns the current fix.
func (m *Mtk) Fix() gps.Fix {
	return m.fix
}

// Decode parses a sentence into the current fix.
func (m *Mtk) Decode(text string) gps.Result {
	return m.decoder.Decode(text, &m.fix)
}

// Update decodes a line taken from the assembler. A line that was cut short
// is reported as Truncated and not decoded.
func (m *Mtk) Update(line linebuf.Line) gps.Result {
	if line.Truncated {
		return gps.Result{Status: gps.Truncated, Checksum: nmea.Verify(line.Text)}
	}
	return m.Decode(line.Text)
}

// Next reads pending bytes until a sentence completes, then decodes it. It
// returns false once the device has nothing more to give right now.
func (m *Mtk) Next() (Report, bool) {
	for {
		if m.lines.Available() {
			line := m.lines.Take()
			res := m.Update(line)
			return Report{Line: line, Result: res, Fix: m.fix}, true
		}
		if _, ok := m.Read(); !ok {
			return Report{}, false
		}
	}
}

// Overruns returns how many sentences were overwritten before being taken.
func (m *Mtk) Overruns() uint64 {
	return m.lines.Overruns()
}

func (m *Mtk) SendCommand(cmd string) (err error) {
	if m.opts.Verbose {
		log.Printf("write: %s", cmd)
	}
	if err = m.port.WriteLine(cmd); err != nil {
		err = fmt.Errorf("gnss/Mtk.SendCommand: %w", err)
	}
	return
}

// WaitForSentence consumes sentences until one whose beginning contains
// match arrives. It gives up with ErrTimeout after looking at attempts
// sentences (Options.Attempts if attempts <= 0) or when Options.Timeout
// passes, whichever is first.
func (m *Mtk) WaitForSentence(ctx context.Context, match string, attempts int) (bool, error) {
	if _, err := m.waitFor(ctx, match, attempts); err != nil {
		return false, fmt.Errorf("gnss/Mtk.WaitForSentence: %w", err)
	}
	return true, nil
}

func (m *Mtk) waitFor(ctx context.Context, match string, attempts int) (line linebuf.Line, err error) {
	if attempts <= 0 {
		attempts = m.opts.Attempts
	}
	var deadline time.Time
	if m.opts.Timeout > 0 {
		deadline = m.clock.Now().Add(m.opts.Timeout)
	}

	seen := 0
	for seen < attempts {
		if m.lines.Available() {
			line = m.lines.Take()
			seen++
			head := line.Text
			if len(head) > m.opts.MatchWindow {
				head = head[:m.opts.MatchWindow]
			}
			if strings.Contains(head, match) {
				return
			}
			continue
		}

		if err = ctx.Err(); err != nil {
			return linebuf.Line{}, err
		}
		if !deadline.IsZero() && !m.clock.Now().Before(deadline) {
			return linebuf.Line{}, fmt.Errorf("%q not seen within %s: %w", match, m.opts.Timeout, ErrTimeout)
		}
		if _, ok := m.Read(); !ok {
			m.clock.Sleep(m.opts.PollInterval)
		}
	}
	return linebuf.Line{}, fmt.Errorf("%q not among %d sentences: %w", match, seen, ErrTimeout)
}
