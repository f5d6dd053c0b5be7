// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gps

import (
	"fmt"
	"strconv"

	gonmea "github.com/adrianmo/go-nmea"
)

// Hemisphere is the direction letter following a coordinate. NoDirection is
// stored when the receiver leaves the field empty.
type Hemisphere byte

const (
	NoDirection Hemisphere = 0
	North       Hemisphere = 'N'
	South       Hemisphere = 'S'
	East        Hemisphere = 'E'
	West        Hemisphere = 'W'
)

func (h Hemisphere) String() string {
	if h == NoDirection {
		return ""
	}
	return string(rune(h))
}

// Fix is what the receiver last told us. Each decoded sentence overwrites
// only the fields it carries.
type Fix struct {
	Hour        uint8
	Minute      uint8
	Second      uint8
	Millisecond uint16

	Day   uint8
	Month uint8
	Year  uint8

	// Latitude and Longitude are in the receiver's DDMM.mmmm form.
	Latitude      float64
	LatHemisphere Hemisphere
	Longitude     float64
	LonHemisphere Hemisphere

	Fix        bool
	FixQuality int
	Satellites int
	HDOP       float64

	// Altitude and GeoidHeight are in meters.
	Altitude    float64
	GeoidHeight float64

	// Speed is over ground in knots, Angle is the course in degrees.
	Speed float64
	Angle float64
}

// LatitudeDegrees converts the latitude to signed decimal degrees.
func (f Fix) LatitudeDegrees() (float64, error) {
	return degrees(f.Latitude, f.LatHemisphere)
}

// LongitudeDegrees converts the longitude to signed decimal degrees.
func (f Fix) LongitudeDegrees() (float64, error) {
	return degrees(f.Longitude, f.LonHemisphere)
}

func degrees(v float64, h Hemisphere) (float64, error) {
	if h == NoDirection {
		return 0, fmt.Errorf("gps.degrees: no hemisphere for %v", v)
	}
	d, err := gonmea.ParseGPS(strconv.FormatFloat(v, 'f', -1, 64) + " " + h.String())
	if err != nil {
		return 0, fmt.Errorf("gps.degrees: %w", err)
	}
	return d, nil
}
