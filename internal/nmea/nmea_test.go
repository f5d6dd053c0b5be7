// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"testing"
)

// Test sentence checksumming
func TestChecksum(t *testing.T) {
	tables := []struct {
		in       string
		expected string
	}{
		{"GPGLL,0000.00000,N,00000.00000,E,070254.000,V,N", "45"},
		{"PSTMGPSSUSPEND,", "38"},
		{"PMTK185,0", "22"},
		{"PMTK183", "38"},
		{"PMTK010,002", "2D"},
	}

	for _, table := range tables {
		out := checksum(table.in)
		if out != table.expected {
			t.Errorf("%q expected: %q, got: %q", table.in, table.expected, out)
		}
	}
}

// Test sentence stringer
func TestStringer(t *testing.T) {
	tables := []struct {
		inType   string
		inData   []string
		expected string
	}{
		{"PSTMGPSSUSPEND", []string{}, "$PSTMGPSSUSPEND,*38"},
		{"PMTK183", nil, "$PMTK183*38"},
		{"PMTK161", []string{"0"}, "$PMTK161,0*28"},
		{"PMTK185", []string{"1"}, "$PMTK185,1*23"},
		{"GPGGA", []string{"123519", "4807.038", "N", "01131.000", "E", "1", "08", "0.9", "545.4", "M", "46.9", "M", "", ""}, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"},
	}

	for _, table := range tables {
		s := Sentence{
			Type: table.inType,
			Data: table.inData,
		}
		out := s.String()
		if out != table.expected {
			t.Errorf("%q, %q expected: %q, got: %q", table.inType, table.inData, table.expected, out)
		}
	}
}

func TestVerify(t *testing.T) {
	tables := []struct {
		in       string
		expected ChecksumStatus
	}{
		{"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A", ChecksumValid},
		{"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A\r", ChecksumValid},
		{"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6a", ChecksumValid},
		{"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,,*6A", ChecksumInvalid},
		{"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,,*11", ChecksumValid},
		{"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*ZZ", ChecksumInvalid},
		{"$PMTKLOG,0,1,a,,900,0,0,0,0,0*", ChecksumAbsent},
		{"$PMTK010,002", ChecksumAbsent},
		{"$*0", ChecksumAbsent},
		{"", ChecksumAbsent},
	}

	for _, table := range tables {
		out := Verify(table.in)
		if out != table.expected {
			t.Errorf("%q expected: %s, got: %s", table.in, table.expected, out)
		}
	}
}

func TestStripChecksum(t *testing.T) {
	tables := []struct {
		in       string
		expected string
	}{
		{"$PMTK010,002*2D\r\n", "$PMTK010,002"},
		{"$PMTKLOG,0,1,a*", "$PMTKLOG,0,1,a"},
		{"$GPGGA,1,2", "$GPGGA,1,2"},
	}

	for _, table := range tables {
		out := StripChecksum(table.in)
		if out != table.expected {
			t.Errorf("%q expected: %q, got: %q", table.in, table.expected, out)
		}
	}
}
