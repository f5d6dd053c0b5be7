// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import (
	"errors"
	"time"
)

// fakeDevice plays back queued bytes and records written lines. Responses
// registered with respond are queued when the matching command is written.
type fakeDevice struct {
	in        []byte
	written   []string
	responses map[string]string
	writeErr  error
}

func newFakeDevice(in string) *fakeDevice {
	return &fakeDevice{in: []byte(in), responses: map[string]string{}}
}

func (d *fakeDevice) ReadAvailable() (byte, bool) {
	if len(d.in) == 0 {
		return 0, false
	}
	c := d.in[0]
	d.in = d.in[1:]
	return c, true
}

func (d *fakeDevice) WriteLine(line string) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	d.written = append(d.written, line)
	if r, ok := d.responses[line]; ok {
		d.in = append(d.in, r...)
	}
	return nil
}

func (d *fakeDevice) respond(cmd, response string) {
	d.responses[cmd] = response
}

func (d *fakeDevice) remaining() string {
	return string(d.in)
}

var errWrite = errors.New("write failed")

// fakeClock only moves when something sleeps.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps++
	c.now = c.now.Add(d)
}

func newTestMtk(dev *fakeDevice) (*Mtk, *fakeClock) {
	clock := newFakeClock()
	m := New(dev, Options{
		Timeout:      time.Second,
		PollInterval: 10 * time.Millisecond,
		Clock:        clock,
	})
	return m, clock
}
