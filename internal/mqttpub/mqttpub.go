// Package mqttpub publishes station snapshots to an MQTT broker so external
// consumers (home automation, dashboards) can follow the station without
// polling the HTTP API.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/baltix/meteostation/internal/metrics"
	"github.com/baltix/meteostation/internal/station"
)

const (
	defaultTopic        = "meteostation/snapshot"
	publishWait         = 5 * time.Second
	disconnectQuiesceMS = 250
)

type Publisher struct {
	client mqtt.Client
	topic  string
}

// Connect dials the broker and returns a ready publisher. An empty topic
// selects the default.
func Connect(broker, clientID, topic string) (*Publisher, error) {
	if topic == "" {
		topic = defaultTopic
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}

	log.Printf("mqtt: connected to %s, topic %s", broker, topic)
	return &Publisher{client: client, topic: topic}, nil
}

// Publish sends one snapshot as JSON at QoS 0. Delivery failures are
// counted and reported but never block the sampling loop for long.
func (p *Publisher) Publish(snap station.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishWait) {
		metrics.SnapshotsPublished.WithLabelValues("timeout").Inc()
		return fmt.Errorf("publish %s: timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		metrics.SnapshotsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}

	metrics.SnapshotsPublished.WithLabelValues("ok").Inc()
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(disconnectQuiesceMS)
}
