// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gps

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errMissingField = errors.New("missing field")
	errBadNumber    = errors.New("bad number")
	errBadLetter    = errors.New("bad letter")
)

// fields walks the comma separated fields of a sentence left to right.
type fields struct {
	rest   string
	done   bool
	strict bool
}

func newFields(payload string, strict bool) *fields {
	f := &fields{strict: strict}
	// skip the identifier
	if comma := strings.IndexByte(payload, ','); comma != -1 {
		f.rest = payload[comma+1:]
	} else {
		f.done = true
	}
	return f
}

func (f *fields) next() (string, error) {
	if f.done {
		return "", errMissingField
	}
	comma := strings.IndexByte(f.rest, ',')
	if comma == -1 {
		f.done = true
		return f.rest, nil
	}
	v := f.rest[:comma]
	f.rest = f.rest[comma+1:]
	return v, nil
}

func (f *fields) skip() error {
	_, err := f.next()
	return err
}

func (f *fields) float() (float64, error) {
	s, err := f.next()
	if err != nil {
		return 0, err
	}
	return parseFloat(s, f.strict)
}

func (f *fields) int() (int, error) {
	s, err := f.next()
	if err != nil {
		return 0, err
	}
	return parseInt(s, f.strict)
}

// hemisphere reads a direction letter, which must be one of a or b or empty.
func (f *fields) hemisphere(a, b Hemisphere) (Hemisphere, error) {
	s, err := f.next()
	if err != nil {
		return NoDirection, err
	}
	switch {
	case s == "":
		return NoDirection, nil
	case len(s) == 1 && Hemisphere(s[0]) == a:
		return a, nil
	case len(s) == 1 && Hemisphere(s[0]) == b:
		return b, nil
	}
	return NoDirection, errBadLetter
}

// clock splits a packed HHMMSS.sss (or DDMMYY) field into its three two-digit
// parts and the milliseconds. Digits past the third fractional place are
// truncated. Strict mode rejects more than six whole digits.
func (f *fields) clock() (hi, mid, lo uint8, ms uint16, err error) {
	s, err := f.next()
	if err != nil {
		return
	}
	whole, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot != -1 {
		whole, frac = s[:dot], s[dot+1:]
	}

	n, err := parseInt(whole, f.strict)
	if err != nil {
		return
	}
	if n < 0 {
		n = -n
	}
	if f.strict && n > 999999 {
		err = errBadNumber
		return
	}
	hi = uint8(n / 10000)
	mid = uint8((n % 10000) / 100)
	lo = uint8(n % 100)

	for i := 0; i < 3; i++ {
		var d uint16
		if i < len(frac) {
			c := frac[i]
			if c >= '0' && c <= '9' {
				d = uint16(c - '0')
			} else if f.strict {
				err = errBadNumber
				return
			} else {
				frac = frac[:i]
			}
		}
		ms = ms*10 + d
	}
	return
}

// parseFloat parses a decimal number. An empty field is zero. In lenient
// mode the longest numeric prefix is used and text without one reads as
// zero.
func parseFloat(s string, strict bool) (float64, error) {
	if s == "" {
		return 0, nil
	}
	if strict {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errBadNumber
		}
		return v, nil
	}
	v, _ := strconv.ParseFloat(numericPrefix(s, true), 64)
	return v, nil
}

func parseInt(s string, strict bool) (int, error) {
	if s == "" {
		return 0, nil
	}
	if strict {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, errBadNumber
		}
		return v, nil
	}
	v, _ := strconv.Atoi(numericPrefix(s, false))
	return v, nil
}

// numericPrefix returns the leading [+-]digits[.digits] part of s.
func numericPrefix(s string, decimal bool) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	seenDot := false
	for ; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			continue
		}
		if decimal && c == '.' && !seenDot {
			seenDot = true
			continue
		}
		break
	}
	return s[:i]
}
