// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package server

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/user"
	"strconv"

	"gitlab.com/postmarketOS/mtk_gnss/internal/pool"
)

// Server shares every sentence broadcast on its pool with the clients
// connected to a unix socket.
type Server struct {
	socket    string
	sockGroup string
	connPool  *pool.Pool
	sock      net.Listener
}

// Create a new Server. An empty sockGroup leaves the socket's group alone.
func New(socket string, sockGroup string, connPool *pool.Pool) (s *Server) {
	s = &Server{
		socket:    socket,
		sockGroup: sockGroup,
		connPool:  connPool,
	}

	return
}

// Start creates the socket and accepts connections in the background.
func (s *Server) Start() (err error) {
	if err := os.RemoveAll(s.socket); err != nil {
		return fmt.Errorf("server.Start(): %w", err)
	}

	s.sock, err = net.Listen("unix", s.socket)
	if err != nil {
		return fmt.Errorf("server.Start(): %w", err)
	}

	if err := s.setOwnership(); err != nil {
		s.sock.Close()
		return fmt.Errorf("server.Start(): %w", err)
	}

	log.Printf("Starting GNSS server, accepting connections at: %s", s.socket)
	go s.connectionHandler()

	return nil
}

func (s *Server) setOwnership() error {
	if err := os.Chmod(s.socket, 0660); err != nil {
		return err
	}
	if s.sockGroup == "" {
		return nil
	}

	group, err := user.LookupGroup(s.sockGroup)
	if err != nil {
		return err
	}

	gid, err := strconv.ParseInt(group.Gid, 10, 32)
	if err != nil {
		return err
	}

	return os.Chown(s.socket, -1, int(gid))
}

// Close stops accepting connections and removes the socket.
func (s *Server) Close() error {
	if s.sock == nil {
		return nil
	}
	return s.sock.Close()
}

func (s *Server) connectionHandler() {
	for {
		conn, err := s.sock.Accept()
		if err != nil {
			log.Printf("server.connectionHandler: %s", err)
			return
		}

		client := pool.NewClient(conn)
		s.connPool.Register <- client

		go s.clientConnection(client)

		log.Printf("New client connected, total: %d", s.connPool.Count())
	}
}

// Routine run for each client connection
func (s *Server) clientConnection(c *pool.Client) {
	defer c.Conn.Close()

	for msg := range c.Send {
		if _, err := c.Conn.Write(msg); err != nil {
			break
		}
	}

	// client disconnected
	s.connPool.Unregister <- c
	log.Println("Client disconnected")
}
