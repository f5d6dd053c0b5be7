// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gitlab.com/postmarketOS/mtk_gnss/internal/gps"
)

const publishTimeout = 2 * time.Second

// Client is the part of an MQTT client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Payload is the JSON document published for every decoded fix. Latitude and
// Longitude are signed decimal degrees and are left out while the receiver
// hasn't reported a hemisphere.
type Payload struct {
	Time        string   `json:"time"`
	Date        string   `json:"date"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Fix         bool     `json:"fix"`
	FixQuality  int      `json:"fix_quality"`
	Satellites  int      `json:"satellites"`
	HDOP        float64  `json:"hdop"`
	Altitude    float64  `json:"altitude"`
	GeoidHeight float64  `json:"geoid_height"`
	Speed       float64  `json:"speed_knots"`
	Course      float64  `json:"course"`
}

func NewPayload(fix gps.Fix) (p Payload) {
	p = Payload{
		Time:        fmt.Sprintf("%02d:%02d:%02d.%03d", fix.Hour, fix.Minute, fix.Second, fix.Millisecond),
		Date:        fmt.Sprintf("%02d/%02d/%02d", fix.Day, fix.Month, fix.Year),
		Fix:         fix.Fix,
		FixQuality:  fix.FixQuality,
		Satellites:  fix.Satellites,
		HDOP:        fix.HDOP,
		Altitude:    fix.Altitude,
		GeoidHeight: fix.GeoidHeight,
		Speed:       fix.Speed,
		Course:      fix.Angle,
	}
	if lat, err := fix.LatitudeDegrees(); err == nil {
		p.Latitude = &lat
	}
	if lon, err := fix.LongitudeDegrees(); err == nil {
		p.Longitude = &lon
	}

	return
}

type Publisher struct {
	client Client
	topic  string
}

func New(client Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Connect opens a connection to broker and returns a publisher on topic.
func Connect(broker string, clientID string, topic string) (p *Publisher, c mqtt.Client, err error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	c = mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("publish.Connect: %w", token.Error())
	}

	return New(c, topic), c, nil
}

// Publish sends the fix as a retained message.
func (p *Publisher) Publish(fix gps.Fix) (err error) {
	payload, err := json.Marshal(NewPayload(fix))
	if err != nil {
		return fmt.Errorf("publish/Publisher.Publish: %w", err)
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish/Publisher.Publish: timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish/Publisher.Publish: %w", err)
	}

	return
}
