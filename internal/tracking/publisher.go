package tracking

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/rentfleet/internal/models"
)

// Publisher receives every tick's telemetry for downstream consumers.
type Publisher interface {
	Publish(t models.Telemetry) error
}

// MQTTPublisher publishes telemetry JSON to fleet/telemetry/<vehicle id>.
type MQTTPublisher struct {
	client mqtt.Client
	qos    byte
	log    *log.Entry
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(brokerURL, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &MQTTPublisher{
		client: client,
		qos:    0,
		log:    log.WithField("component", "mqtt-publisher"),
	}, nil
}

// Publish sends one telemetry record.
func (p *MQTTPublisher) Publish(t models.Telemetry) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}
	topic := fmt.Sprintf("fleet/telemetry/%d", t.VehicleID)
	token := p.client.Publish(topic, p.qos, false, data)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
