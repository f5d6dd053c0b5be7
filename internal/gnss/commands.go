// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import "gitlab.com/postmarketOS/mtk_gnss/internal/nmea"

// MediaTek (PMTK) commands and the responses the driver waits for.
var (
	CmdLocusStartLog    = nmea.Sentence{Type: "PMTK185", Data: []string{"0"}}.String()
	CmdLocusStopLog     = nmea.Sentence{Type: "PMTK185", Data: []string{"1"}}.String()
	CmdLocusQueryStatus = nmea.Sentence{Type: "PMTK183"}.String()
	CmdStandby          = nmea.Sentence{Type: "PMTK161", Data: []string{"0"}}.String()
	// any traffic on the line wakes the receiver up
	CmdWakeup = ""

	AckLocusStartStop = nmea.Sentence{Type: "PMTK001", Data: []string{"185", "3"}}.String()
	AckAwake          = nmea.Sentence{Type: "PMTK010", Data: []string{"002"}}.String()

	LoggerStatusPrefix = "$PMTKLOG"
)
