// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import (
	"context"
	"fmt"
)

// InStandby reports whether the receiver was put into standby.
func (m *Mtk) InStandby() bool {
	return m.standby.IsSet()
}

// Standby puts the receiver into standby mode. MTK receivers don't reliably
// acknowledge this in time, so a sent command only yields Pending. Calling
// Standby again before Wakeup sends nothing, since any further traffic would
// wake the receiver.
func (m *Mtk) Standby() (Outcome, error) {
	if m.standby.IsSet() {
		return Failed, fmt.Errorf("gnss/Mtk.Standby: %w", ErrInvalidTransition)
	}
	if err := m.SendCommand(CmdStandby); err != nil {
		return Failed, fmt.Errorf("gnss/Mtk.Standby: %w", err)
	}
	m.standby.Set()
	return Pending, nil
}

// Wakeup brings the receiver out of standby and waits for it to report that
// it is awake.
func (m *Mtk) Wakeup(ctx context.Context) (Outcome, error) {
	if !m.standby.IsSet() {
		return Failed, fmt.Errorf("gnss/Mtk.Wakeup: %w", ErrInvalidTransition)
	}
	if err := m.SendCommand(CmdWakeup); err != nil {
		return Failed, fmt.Errorf("gnss/Mtk.Wakeup: %w", err)
	}
	m.standby.UnSet()

	if _, err := m.waitFor(ctx, AckAwake, 0); err != nil {
		return Failed, fmt.Errorf("gnss/Mtk.Wakeup: %w", err)
	}
	return Confirmed, nil
}
