// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package gps decodes fix data (GGA) and recommended minimum (RMC) sentences
// into the receiver's current fix.
package gps

import (
	"fmt"
	"strings"

	"gitlab.com/postmarketOS/mtk_gnss/internal/nmea"
)

// Status is the outcome of decoding one sentence.
type Status int

const (
	Ok Status = iota
	NotRecognized
	Malformed
	ChecksumMismatch
	Truncated
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case NotRecognized:
		return "not_recognized"
	case Malformed:
		return "malformed"
	case ChecksumMismatch:
		return "checksum_mismatch"
	case Truncated:
		return "truncated"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Kind identifies which sentence a line was recognized as.
type Kind int

const (
	KindNone Kind = iota
	KindGGA
	KindRMC
)

func (k Kind) String() string {
	switch k {
	case KindGGA:
		return "GGA"
	case KindRMC:
		return "RMC"
	}
	return ""
}

// Result describes what Decode did with a sentence. Checksum is reported
// for every line, including ones that weren't recognized.
type Result struct {
	Status   Status
	Checksum nmea.ChecksumStatus
	Kind     Kind
	// Err describes why a Malformed sentence was dropped.
	Err error
}

// ChecksumPolicy selects what happens to a sentence whose checksum doesn't
// match.
type ChecksumPolicy int

const (
	// Tolerate decodes the sentence anyway and only reports the mismatch.
	Tolerate ChecksumPolicy = iota
	// Reject drops the sentence with ChecksumMismatch.
	Reject
)

// ParseChecksumPolicy maps the configuration spelling of a policy.
func ParseChecksumPolicy(s string) (ChecksumPolicy, error) {
	switch strings.ToLower(s) {
	case "", "tolerate":
		return Tolerate, nil
	case "reject":
		return Reject, nil
	}
	return Tolerate, fmt.Errorf("gps.ParseChecksumPolicy: unknown policy %q", s)
}

var (
	DefaultGGAIDs = []string{"$GPGGA", "$GNGGA"}
	DefaultRMCIDs = []string{"$GPRMC", "$GNRMC"}
)

// Decoder turns sentence text into Fix updates.
type Decoder struct {
	Checksum ChecksumPolicy
	// Strict makes unparsable numbers a Malformed sentence instead of zero.
	Strict bool

	GGAIDs []string
	RMCIDs []string
}

func NewDecoder() *Decoder {
	return &Decoder{
		GGAIDs: DefaultGGAIDs,
		RMCIDs: DefaultRMCIDs,
	}
}

// Decode parses line into fix. Sentence identifiers are matched anywhere in
// the line. On anything but Ok, fix is left exactly as it was.
func (d *Decoder) Decode(line string, fix *Fix) (res Result) {
	res.Checksum = nmea.Verify(line)

	kind, at := d.identify(line)
	if kind == KindNone {
		res.Status = NotRecognized
		return
	}
	res.Kind = kind

	if res.Checksum == nmea.ChecksumInvalid && d.Checksum == Reject {
		res.Status = ChecksumMismatch
		return
	}

	next := *fix
	f := newFields(nmea.StripChecksum(line[at:]), d.Strict)
	var err error
	switch kind {
	case KindGGA:
		err = decodeGGA(f, &next)
	case KindRMC:
		err = decodeRMC(f, &next)
	}
	if err != nil {
		res.Status = Malformed
		res.Err = fmt.Errorf("gps.Decode: %s: %w", kind, err)
		return
	}

	*fix = next
	res.Status = Ok
	return
}

func (d *Decoder) identify(line string) (Kind, int) {
	for _, id := range d.GGAIDs {
		if i := strings.Index(line, id); i != -1 {
			return KindGGA, i
		}
	}
	for _, id := range d.RMCIDs {
		if i := strings.Index(line, id); i != -1 {
			return KindRMC, i
		}
	}
	return KindNone, 0
}

// GGA fields: time, lat, N/S, lon, E/W, quality, satellites, HDOP,
// altitude, M, geoid height, M, ...
func decodeGGA(f *fields, fix *Fix) (err error) {
	if fix.Hour, fix.Minute, fix.Second, fix.Millisecond, err = f.clock(); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	if err = decodePosition(f, fix); err != nil {
		return
	}
	if fix.FixQuality, err = f.int(); err != nil {
		return fmt.Errorf("fix quality: %w", err)
	}
	if fix.Satellites, err = f.int(); err != nil {
		return fmt.Errorf("satellites: %w", err)
	}
	if fix.HDOP, err = f.float(); err != nil {
		return fmt.Errorf("hdop: %w", err)
	}
	if fix.Altitude, err = f.float(); err != nil {
		return fmt.Errorf("altitude: %w", err)
	}
	// altitude units are always meters
	if err = f.skip(); err != nil {
		return fmt.Errorf("altitude units: %w", err)
	}
	if fix.GeoidHeight, err = f.float(); err != nil {
		return fmt.Errorf("geoid height: %w", err)
	}
	return nil
}

// RMC fields: time, A/V, lat, N/S, lon, E/W, speed, course, date, ...
func decodeRMC(f *fields, fix *Fix) (err error) {
	if fix.Hour, fix.Minute, fix.Second, fix.Millisecond, err = f.clock(); err != nil {
		return fmt.Errorf("time: %w", err)
	}

	status, err := f.next()
	if err != nil {
		return fmt.Errorf("validity: %w", err)
	}
	switch status {
	case "A":
		fix.Fix = true
	case "V":
		fix.Fix = false
	default:
		return fmt.Errorf("validity %q: %w", status, errBadLetter)
	}

	if err = decodePosition(f, fix); err != nil {
		return
	}
	if fix.Speed, err = f.float(); err != nil {
		return fmt.Errorf("speed: %w", err)
	}
	if fix.Angle, err = f.float(); err != nil {
		return fmt.Errorf("course: %w", err)
	}
	if fix.Day, fix.Month, fix.Year, _, err = f.clock(); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return nil
}

func decodePosition(f *fields, fix *Fix) (err error) {
	if fix.Latitude, err = f.float(); err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	if fix.LatHemisphere, err = f.hemisphere(North, South); err != nil {
		return fmt.Errorf("latitude hemisphere: %w", err)
	}
	if fix.Longitude, err = f.float(); err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	if fix.LonHemisphere, err = f.hemisphere(East, West); err != nil {
		return fmt.Errorf("longitude hemisphere: %w", err)
	}
	return nil
}
