// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/postmarketOS/mtk_gnss/internal/nmea"
)

// StatusField is one integer of the LOCUS status report. Valid is false when
// the receiver didn't send the field or it couldn't be read.
type StatusField struct {
	Value int
	Valid bool
}

// Int returns the value, or -1 when the field isn't valid.
func (f StatusField) Int() int {
	if !f.Valid {
		return -1
	}
	return f.Value
}

func (f StatusField) String() string {
	if !f.Valid {
		return "-"
	}
	return fmt.Sprintf("%d", f.Value)
}

// LoggerStatus is the receiver's answer to a LOCUS status query.
type LoggerStatus struct {
	Serial   StatusField
	Type     StatusField
	Mode     StatusField
	Config   StatusField
	Interval StatusField
	Distance StatusField
	Speed    StatusField
	// Status is 1 while the logger is running. The receiver reports it the
	// other way around.
	Status  StatusField
	Records StatusField
	Percent StatusField
}

func (s *LoggerStatus) fields() []*StatusField {
	return []*StatusField{
		&s.Serial, &s.Type, &s.Mode, &s.Config, &s.Interval,
		&s.Distance, &s.Speed, &s.Status, &s.Records, &s.Percent,
	}
}

// ParseLoggerStatus reads a $PMTKLOG response. Fields the response doesn't
// carry are left invalid. The mode field is a hex-style digit, so a letter
// there reads as letter-'a'+10.
func ParseLoggerStatus(line string) (status LoggerStatus, err error) {
	comma := strings.IndexByte(line, ',')
	if comma == -1 {
		err = fmt.Errorf("gnss.ParseLoggerStatus: %q: %w", line, ErrMalformed)
		return
	}

	parts := strings.Split(nmea.StripChecksum(line[comma+1:]), ",")
	for i, f := range status.fields() {
		if i >= len(parts) {
			break
		}
		*f = parseStatusField(parts[i], i == 2)
	}

	if status.Status.Valid {
		if status.Status.Value == 0 {
			status.Status.Value = 1
		} else {
			status.Status.Value = 0
		}
	}
	return
}

func parseStatusField(s string, hexLetters bool) StatusField {
	if hexLetters && len(s) == 1 {
		c := s[0]
		switch {
		case c >= 'a' && c <= 'z':
			return StatusField{Value: int(c-'a') + 10, Valid: true}
		case c >= 'A' && c <= 'Z':
			return StatusField{Value: int(c-'A') + 10, Valid: true}
		}
	}

	v := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return StatusField{}
		}
		v = v*10 + int(c-'0')
	}
	// an empty field is sent as zero
	return StatusField{Value: v, Valid: true}
}

// LoggerStatus returns the last status read with ReadLoggerStatus.
func (m *Mtk) LoggerStatus() LoggerStatus {
	return m.status
}

// StartLogger tells the receiver to start LOCUS logging and waits for the
// acknowledgment.
func (m *Mtk) StartLogger(ctx context.Context) (Outcome, error) {
	return m.locusCommand(ctx, CmdLocusStartLog, "StartLogger")
}

// StopLogger tells the receiver to stop LOCUS logging and waits for the
// acknowledgment.
func (m *Mtk) StopLogger(ctx context.Context) (Outcome, error) {
	return m.locusCommand(ctx, CmdLocusStopLog, "StopLogger")
}

func (m *Mtk) locusCommand(ctx context.Context, cmd string, name string) (Outcome, error) {
	if err := m.SendCommand(cmd); err != nil {
		return Failed, fmt.Errorf("gnss/Mtk.%s: %w", name, err)
	}
	// anything completed before the command can't be its answer
	m.lines.Clear()
	if _, err := m.waitFor(ctx, AckLocusStartStop, 0); err != nil {
		return Failed, fmt.Errorf("gnss/Mtk.%s: %w", name, err)
	}
	return Confirmed, nil
}

// ReadLoggerStatus queries the LOCUS logger and parses the response.
func (m *Mtk) ReadLoggerStatus(ctx context.Context) (status LoggerStatus, err error) {
	if err = m.SendCommand(CmdLocusQueryStatus); err != nil {
		err = fmt.Errorf("gnss/Mtk.ReadLoggerStatus: %w", err)
		return
	}

	line, err := m.waitFor(ctx, LoggerStatusPrefix, 0)
	if err != nil {
		err = fmt.Errorf("gnss/Mtk.ReadLoggerStatus: %w", err)
		return
	}

	if status, err = ParseLoggerStatus(line.Text); err != nil {
		err = fmt.Errorf("gnss/Mtk.ReadLoggerStatus: %w", err)
		return
	}
	m.status = status
	return
}
