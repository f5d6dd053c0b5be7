// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"fmt"
	"strings"
)

type Sentence struct {
	Type string
	Data []string
}

func checksum(s string) string {
	return fmt.Sprintf("%02X", sum(s))
}

func sum(s string) (sum uint8) {
	for i := 0; i < len(s); i++ {
		sum ^= s[i]
	}
	return
}

func (s Sentence) String() string {
	sentence := s.Type
	for _, d := range s.Data {
		sentence = fmt.Sprintf("%s,%s", sentence, d)
	}

	if len(s.Data) == 0 && !strings.HasPrefix(s.Type, "PMTK") {
		// always make sure the type is followed by a comma if there is no data,
		// except for MTK packets, which are sent bare (e.g. $PMTK183*38)
		sentence = fmt.Sprintf("%s,", sentence)
	}

	str := fmt.Sprintf("$%s*%s", sentence, checksum(sentence))
	return str
}

func (s Sentence) Bytes() []byte {
	return []byte(s.String())
}

// ChecksumStatus is the outcome of looking for and verifying the trailing
// *HH field of a sentence.
type ChecksumStatus int

const (
	ChecksumAbsent ChecksumStatus = iota
	ChecksumValid
	ChecksumInvalid
)

func (c ChecksumStatus) String() string {
	switch c {
	case ChecksumValid:
		return "valid"
	case ChecksumInvalid:
		return "invalid"
	default:
		return "absent"
	}
}

// Verify checks the checksum of a sentence. The checksum field is only
// recognized as an asterisk followed by two characters at the very end of the
// line, after trailing CR/LF and blanks are dropped. Every byte strictly
// between the first character and the asterisk is included in the sum.
func Verify(line string) ChecksumStatus {
	line = strings.TrimRight(line, "\r\n \t\x00")
	n := len(line)
	if n < 4 || line[n-3] != '*' {
		return ChecksumAbsent
	}

	want := parseHex(line[n-2])<<4 | parseHex(line[n-1])
	if sum(line[1:n-3]) != want {
		return ChecksumInvalid
	}
	return ChecksumValid
}

// parseHex returns the value of one hex digit. Anything that isn't 0-9 or A-F
// reads as zero, which makes a garbled checksum fail verification instead of
// being skipped.
func parseHex(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	}
	return 0
}

// StripChecksum returns the line without trailing line endings and without
// the *HH checksum field, if there is one.
func StripChecksum(line string) string {
	line = strings.TrimRight(line, "\r\n \t\x00")
	if star := strings.LastIndexByte(line, '*'); star != -1 {
		line = line[:star]
	}
	return line
}
