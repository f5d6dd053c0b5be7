// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandbyTwice(t *testing.T) {
	dev := newFakeDevice("")
	m, _ := newTestMtk(dev)

	outcome, err := m.Standby()
	require.NoError(t, err)
	assert.Equal(t, Pending, outcome)
	assert.True(t, m.InStandby())

	outcome, err = m.Standby()
	assert.Equal(t, Failed, outcome)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, []string{"$PMTK161,0*28"}, dev.written, "second standby must not send anything")
}

func TestStandbyWriteError(t *testing.T) {
	dev := newFakeDevice("")
	dev.writeErr = errWrite
	m, _ := newTestMtk(dev)

	outcome, err := m.Standby()
	assert.Equal(t, Failed, outcome)
	assert.ErrorIs(t, err, errWrite)
	assert.False(t, m.InStandby())
}

func TestWakeup(t *testing.T) {
	dev := newFakeDevice("")
	dev.respond(CmdWakeup, "$PMTK010,001*2E\r\n$PMTK010,002*2D\r\n")
	m, _ := newTestMtk(dev)

	_, err := m.Standby()
	require.NoError(t, err)

	outcome, err := m.Wakeup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Confirmed, outcome)
	assert.False(t, m.InStandby())
	assert.Equal(t, []string{"$PMTK161,0*28", ""}, dev.written)
}

func TestWakeupNotInStandby(t *testing.T) {
	dev := newFakeDevice("")
	m, _ := newTestMtk(dev)

	outcome, err := m.Wakeup(context.Background())
	assert.Equal(t, Failed, outcome)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, dev.written)
}

func TestWakeupNoAnswer(t *testing.T) {
	dev := newFakeDevice("")
	m, _ := newTestMtk(dev)

	_, err := m.Standby()
	require.NoError(t, err)

	outcome, err := m.Wakeup(context.Background())
	assert.Equal(t, Failed, outcome)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, m.InStandby(), "the wake command went out")
}

func TestWakeupFromInitialStandby(t *testing.T) {
	dev := newFakeDevice("")
	dev.respond(CmdWakeup, "$PMTK010,002*2D\r\n")
	m := New(dev, Options{Standby: true, Clock: newFakeClock(), Timeout: time.Second})

	require.True(t, m.InStandby())
	outcome, err := m.Wakeup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Confirmed, outcome)
	assert.Equal(t, []string{""}, dev.written)
}

func TestAttachKeepsState(t *testing.T) {
	old := newFakeDevice(gga + "$GPRMC,1")
	m, _ := newTestMtk(old)
	_, ok := m.Next()
	require.True(t, ok)
	_, err := m.Standby()
	require.NoError(t, err)
	for {
		if _, ok := m.Read(); !ok {
			break
		}
	}

	dev := newFakeDevice(",A*00\r\n")
	dev.respond(CmdWakeup, "$PMTK010,002*2D\r\n")
	m.Attach(dev)

	assert.True(t, m.InStandby())
	assert.Equal(t, 8, m.Fix().Satellites)
	rep, ok := m.Next()
	require.True(t, ok)
	assert.Equal(t, ",A*00\r", rep.Line.Text, "the line started on the old transport is dropped")
	assert.Equal(t, 8, rep.Fix.Satellites)

	outcome, err := m.Wakeup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Confirmed, outcome)
	assert.Equal(t, []string{""}, dev.written)
	assert.Equal(t, []string{CmdStandby}, old.written)
}
