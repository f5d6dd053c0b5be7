// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package pool

import (
	"net"
	"sync"
)

// clientQueue is how many sentences may wait for a slow client before it
// starts missing them.
const clientQueue = 64

type Client struct {
	Send chan []byte
	Conn net.Conn
}

func NewClient(conn net.Conn) *Client {
	return &Client{
		Send: make(chan []byte, clientQueue),
		Conn: conn,
	}
}

type Pool struct {
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte

	mu      sync.Mutex
	clients map[*Client]bool
}

func New() *Pool {
	return &Pool{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte),
		clients:    make(map[*Client]bool),
	}
}

// Count returns the number of registered clients.
func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// Start runs the pool until stop is closed. Every broadcast message is
// forwarded, newline terminated, to each client. A client whose queue is full
// misses the message rather than holding up the others.
func (p *Pool) Start(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case c := <-p.Register:
			p.mu.Lock()
			p.clients[c] = true
			p.mu.Unlock()
		case c := <-p.Unregister:
			p.mu.Lock()
			if p.clients[c] {
				delete(p.clients, c)
				close(c.Send)
			}
			p.mu.Unlock()
		case msg := <-p.Broadcast:
			line := append(append([]byte{}, msg...), '\n')
			p.mu.Lock()
			for c := range p.clients {
				select {
				case c.Send <- line:
				default:
				}
			}
			p.mu.Unlock()
		}
	}
}
