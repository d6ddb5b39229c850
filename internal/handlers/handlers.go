package handlers

import (
	"context"
	"fmt"
	"log"

	"airbridge/internal/config"
)

// Handler processes device command payloads for one device type.
type Handler interface {
	Initialize(cfg config.DeviceConfig) error
	Handle(ctx context.Context, topic string, payload map[string]interface{}) error
}

// Registry maps command topics to initialized device handlers. It is built
// once at startup from the enumerated set of supported device types.
type Registry struct {
	byTopic map[string]Handler
}

// NewRegistry initializes a handler per configured device and indexes it
// under the device's command topics.
func NewRegistry(devices map[string]config.DeviceConfig) (*Registry, error) {
	r := &Registry{byTopic: make(map[string]Handler)}
	for name, dev := range devices {
		h, err := newHandler(dev.Type)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		if err := h.Initialize(dev); err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		for _, topic := range dev.Topics {
			r.byTopic[topic] = h
		}
		log.Printf("HANDLERS: Initialized %s handler for %s", dev.Type, name)
	}
	return r, nil
}

func newHandler(deviceType string) (Handler, error) {
	switch deviceType {
	case "aircon":
		return NewAirconHandler(), nil
	}
	return nil, fmt.Errorf("unsupported device type: %s", deviceType)
}

// ForTopic returns the handler configured for the given command topic.
func (r *Registry) ForTopic(topic string) (Handler, bool) {
	h, ok := r.byTopic[topic]
	return h, ok
}
