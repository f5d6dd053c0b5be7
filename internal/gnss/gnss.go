// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import (
	"errors"
	"time"

	"gitlab.com/postmarketOS/mtk_gnss/internal/gps"
	"gitlab.com/postmarketOS/mtk_gnss/internal/linebuf"
)

var (
	// ErrTimeout is returned when a handshake ran out of attempts or time
	// before the expected sentence arrived.
	ErrTimeout = errors.New("no matching sentence")
	// ErrInvalidTransition is returned by Standby and Wakeup when the
	// receiver is already in the requested power mode. Nothing is sent.
	ErrInvalidTransition = errors.New("receiver already in requested mode")
	// ErrMalformed is returned when a response can't be interpreted.
	ErrMalformed = errors.New("malformed response")
)

// ByteSource hands out bytes received from the device, one at a time, without
// blocking.
type ByteSource interface {
	// ReadAvailable returns the next received byte, or false if none is
	// pending right now.
	ReadAvailable() (byte, bool)
}

// LineWriter sends one complete command line to the device.
type LineWriter interface {
	WriteLine(line string) error
}

type Transport interface {
	ByteSource
	LineWriter
}

// Clock is how the driver measures handshake deadlines and waits between
// polls.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Outcome is the result of a command sent to the receiver.
type Outcome int

const (
	Failed Outcome = iota
	// Confirmed means the receiver acknowledged the command.
	Confirmed
	// Pending means the command was sent but no acknowledgment is waited
	// for, so it may or may not have taken effect.
	Pending
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Pending:
		return "pending"
	}
	return "failed"
}

// Report is one completed sentence and what decoding it did to the fix.
type Report struct {
	Line   linebuf.Line
	Result gps.Result
	Fix    gps.Fix
}
