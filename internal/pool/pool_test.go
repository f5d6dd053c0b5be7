// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package pool

import (
	"testing"
)

func TestBroadcast(t *testing.T) {
	p := New()
	stop := make(chan struct{})
	defer close(stop)
	go p.Start(stop)

	a, b := NewClient(nil), NewClient(nil)
	p.Register <- a
	p.Register <- b

	msg := []byte("$GPGGA,1")
	p.Broadcast <- msg

	for _, c := range []*Client{a, b} {
		got := string(<-c.Send)
		if got != "$GPGGA,1\n" {
			t.Errorf("expected: %q, got: %q", "$GPGGA,1\n", got)
		}
	}
	if p.Count() != 2 {
		t.Errorf("expected 2 clients, got %d", p.Count())
	}

	p.Unregister <- a
	p.Broadcast <- []byte("$GPRMC")
	if _, open := <-a.Send; open {
		t.Error("unregistered client's queue should be closed")
	}
	if got := string(<-b.Send); got != "$GPRMC\n" {
		t.Errorf("expected: %q, got: %q", "$GPRMC\n", got)
	}
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	p := New()
	stop := make(chan struct{})
	defer close(stop)
	go p.Start(stop)

	c := NewClient(nil)
	p.Register <- c
	for i := 0; i < clientQueue*2; i++ {
		p.Broadcast <- []byte("$GPGSA")
	}
	if len(c.Send) != clientQueue {
		t.Errorf("expected a full queue of %d, got %d", clientQueue, len(c.Send))
	}
}
