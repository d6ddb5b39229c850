package bridge

import (
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type mqttPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher wraps an MQTT client as a response event publisher.
func NewMQTTPublisher(client mqtt.Client) Publisher {
	return mqttPublisher{client: client}
}

func (p mqttPublisher) Publish(topic string, payload []byte) {
	token := p.client.Publish(topic, 1, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("BRIDGE: Failed to publish to %s: %v", topic, token.Error())
		}
	}()
}
