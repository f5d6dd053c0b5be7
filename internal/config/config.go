// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml"

	"gitlab.com/postmarketOS/mtk_gnss/internal/gnss"
	"gitlab.com/postmarketOS/mtk_gnss/internal/gps"
	"gitlab.com/postmarketOS/mtk_gnss/internal/linebuf"
)

type Config struct {
	Socket        string `toml:"socket"`
	OwnerGroup    string `toml:"group"`
	DevicePath    string `toml:"device_path"`
	BaudRate      int    `toml:"device_baud_rate"`
	SerialBackend string `toml:"serial_backend"`
	MetricsAddr   string `toml:"metrics_addr"`

	Nmea      Nmea      `toml:"nmea"`
	Handshake Handshake `toml:"handshake"`
	Mqtt      Mqtt      `toml:"mqtt"`
}

type Nmea struct {
	MaxLineLength  int    `toml:"max_line_length"`
	ChecksumPolicy string `toml:"checksum_policy"`
	StrictNumbers  bool   `toml:"strict_numbers"`
}

type Handshake struct {
	Attempts     int    `toml:"attempts"`
	Timeout      string `toml:"timeout"`
	PollInterval string `toml:"poll_interval"`
	MatchWindow  int    `toml:"match_window"`
}

// Mqtt publishing is disabled when Broker is empty.
type Mqtt struct {
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	ClientID string `toml:"client_id"`
}

func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func (c *Config) setDefaults() {
	setString(&c.Socket, "/var/run/mtk_gnss.sock")
	setString(&c.OwnerGroup, "geoclue")
	setString(&c.DevicePath, "/dev/ttyS0")
	setInt(&c.BaudRate, 9600)
	setString(&c.SerialBackend, "tarm")

	setInt(&c.Nmea.MaxLineLength, linebuf.DefaultCapacity)
	setString(&c.Nmea.ChecksumPolicy, "tolerate")

	setInt(&c.Handshake.Attempts, gnss.DefaultAttempts)
	setString(&c.Handshake.Timeout, gnss.DefaultTimeout.String())
	setString(&c.Handshake.PollInterval, gnss.DefaultPollInterval.String())
	setInt(&c.Handshake.MatchWindow, gnss.DefaultMatchWindow)

	setString(&c.Mqtt.Topic, "gnss/fix")
	setString(&c.Mqtt.ClientID, "mtk_gnss")
}

// Parse reads a config file. Keys missing from the file, or set to zero,
// take their defaults.
func Parse(file string) (c *Config, err error) {
	contents, err := os.ReadFile(file)
	if err != nil {
		err = fmt.Errorf("config.Parse(): %w", err)
		return
	}

	c = &Config{}

	if err = toml.Unmarshal(contents, c); err != nil {
		err = fmt.Errorf("config.Parse(): %w", err)
		return
	}
	c.setDefaults()

	if _, err = c.DriverOptions(); err != nil {
		err = fmt.Errorf("config.Parse(): %w", err)
	}
	return
}

// DriverOptions converts the nmea and handshake tables to driver options.
func (c *Config) DriverOptions() (opts gnss.Options, err error) {
	if c.Nmea.MaxLineLength < 2 {
		err = fmt.Errorf("max_line_length must be at least 2, got %d", c.Nmea.MaxLineLength)
		return
	}
	if c.Handshake.Attempts < 1 {
		err = fmt.Errorf("attempts must be at least 1, got %d", c.Handshake.Attempts)
		return
	}
	if c.Handshake.MatchWindow < 1 {
		err = fmt.Errorf("match_window must be at least 1, got %d", c.Handshake.MatchWindow)
		return
	}

	policy, err := gps.ParseChecksumPolicy(c.Nmea.ChecksumPolicy)
	if err != nil {
		return
	}
	timeout, err := time.ParseDuration(c.Handshake.Timeout)
	if err != nil {
		err = fmt.Errorf("timeout: %w", err)
		return
	}
	poll, err := time.ParseDuration(c.Handshake.PollInterval)
	if err != nil {
		err = fmt.Errorf("poll_interval: %w", err)
		return
	}

	opts = gnss.Options{
		MaxLineLength: c.Nmea.MaxLineLength,
		Checksum:      policy,
		StrictNumbers: c.Nmea.StrictNumbers,
		Attempts:      c.Handshake.Attempts,
		Timeout:       timeout,
		PollInterval:  poll,
		MatchWindow:   c.Handshake.MatchWindow,
	}
	return
}
