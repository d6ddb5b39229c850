package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"airbridge/internal/config"
	"airbridge/internal/handlers"
	"airbridge/internal/models"
	"airbridge/internal/schedule"
	"airbridge/internal/statecache"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	dispatchTimeout = 30 * time.Second
	queueSize       = 64
)

// Clock is the synchronized time source consumed by the tick driver.
type Clock interface {
	Now() time.Time
}

// Dispatcher resolves a command topic to its device handler.
type Dispatcher interface {
	ForTopic(topic string) (handlers.Handler, bool)
}

// Publisher is the outbound half of the MQTT client, narrowed to what the
// bridge needs for response events.
type Publisher interface {
	Publish(topic string, payload []byte)
}

type queuedMessage struct {
	topic   string
	payload map[string]interface{}
}

// Bridge routes MQTT traffic between schedule management topics, device
// command topics and the device handlers, and drives the schedule tick.
type Bridge struct {
	cfg       *config.Config
	client    mqtt.Client
	publisher Publisher
	registry  Dispatcher
	manager   *schedule.Manager
	clock     Clock
	cache     *statecache.Cache

	tickInterval time.Duration

	mu        sync.Mutex
	nextCheck time.Time

	queue  chan queuedMessage
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewBridge creates a bridge wired to the given collaborators.
func NewBridge(cfg *config.Config, manager *schedule.Manager, clock Clock, registry Dispatcher, cache *statecache.Cache, publisher Publisher) *Bridge {
	tick := time.Duration(cfg.Scheduler.TickIntervalSeconds) * time.Second
	if tick <= 0 {
		tick = 30 * time.Second
	}
	return &Bridge{
		cfg:          cfg,
		publisher:    publisher,
		registry:     registry,
		manager:      manager,
		clock:        clock,
		cache:        cache,
		tickInterval: tick,
		queue:        make(chan queuedMessage, queueSize),
		stopCh:       make(chan struct{}),
	}
}

// Start subscribes to the scheduler and device topics and launches the
// device message worker.
func (b *Bridge) Start(client mqtt.Client) error {
	b.client = client

	for action, topic := range b.cfg.Scheduler.Topics {
		action := action
		if token := client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
			b.handleSchedulerMessage(action, msg.Payload())
		}); token.Wait() && token.Error() != nil {
			return fmt.Errorf("subscribe %s: %w", topic, token.Error())
		}
		log.Printf("BRIDGE: Subscribed to scheduler topic: %s", topic)
	}

	for name, dev := range b.cfg.Devices {
		for _, topic := range dev.Topics {
			if token := client.Subscribe(topic, 1, b.onDeviceCommand); token.Wait() && token.Error() != nil {
				return fmt.Errorf("subscribe %s: %w", topic, token.Error())
			}
			log.Printf("BRIDGE: Subscribed to %s topic: %s", name, topic)
		}
	}

	if b.cache != nil {
		if token := client.Subscribe("devices/+/state", 1, b.onDeviceState); token.Wait() && token.Error() != nil {
			return fmt.Errorf("subscribe devices/+/state: %w", token.Error())
		}
		log.Println("BRIDGE: Subscribed to device state topics")
	}

	b.wg.Add(1)
	go b.runQueue()

	log.Println("BRIDGE: Started")
	return nil
}

// Stop drains the worker and disconnects the MQTT client.
func (b *Bridge) Stop() {
	close(b.stopCh)
	b.wg.Wait()
	if b.client != nil {
		b.client.Disconnect(250)
	}
	log.Println("BRIDGE: Stopped")
}

func (b *Bridge) onDeviceCommand(_ mqtt.Client, msg mqtt.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		log.Printf("BRIDGE: Error decoding message on %s: %v", msg.Topic(), err)
		return
	}
	log.Printf("BRIDGE: Received message on topic %s", msg.Topic())

	select {
	case b.queue <- queuedMessage{topic: msg.Topic(), payload: payload}:
	default:
		log.Printf("BRIDGE: Message queue full, dropping message on %s", msg.Topic())
	}
}

func (b *Bridge) onDeviceState(_ mqtt.Client, msg mqtt.Message) {
	deviceID := statecache.ParseDeviceID(msg.Topic())
	if deviceID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.cache.SetState(ctx, deviceID, msg.Payload())
}

func (b *Bridge) runQueue() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stopCh:
			return
		case m := <-b.queue:
			if err := b.dispatch(m.topic, m.payload); err != nil {
				log.Printf("BRIDGE: Error processing queued message on %s: %v", m.topic, err)
			}
		}
	}
}

func (b *Bridge) dispatch(topic string, payload map[string]interface{}) error {
	handler, ok := b.registry.ForTopic(topic)
	if !ok {
		return fmt.Errorf("no device handler configured for topic: %s", topic)
	}
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	return handler.Handle(ctx, topic, payload)
}

func (b *Bridge) handleSchedulerMessage(action string, raw []byte) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("BRIDGE: Error decoding scheduler message: %v", err)
		b.publishResponse(action, "error", nil, "invalid JSON payload", "")
		return
	}
	requestID, _ := payload["request_id"].(string)

	switch action {
	case "create", "update":
		data := payload
		if wrapped, ok := payload["schedule"].(map[string]interface{}); ok {
			data = wrapped
		}
		in, err := decodeSchedule(data)
		if err != nil {
			b.publishResponse(action, "error", nil, err.Error(), requestID)
			return
		}
		saved := b.manager.Upsert(in)
		b.publishResponse(action, "success", map[string]interface{}{"schedule": saved}, "", requestID)

	case "delete":
		id, _ := payload["id"].(string)
		if id == "" {
			id, _ = payload["schedule_id"].(string)
		}
		if id == "" {
			b.publishResponse(action, "error", nil, "schedule id is required for delete action", requestID)
			return
		}
		deleted := b.manager.Delete(id)
		status := "success"
		if !deleted {
			status = "not_found"
		}
		b.publishResponse(action, status, map[string]interface{}{"id": id, "deleted": deleted}, "", requestID)

	case "list":
		b.publishResponse(action, "success", map[string]interface{}{"schedules": b.manager.List()}, "", requestID)

	default:
		b.publishResponse(action, "error", nil, fmt.Sprintf("unsupported scheduler action: %s", action), requestID)
	}
}

func decodeSchedule(data map[string]interface{}) (models.Schedule, error) {
	var s models.Schedule
	raw, err := json.Marshal(data)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("malformed schedule payload: %w", err)
	}
	return s, nil
}

func (b *Bridge) publishResponse(action, status string, data map[string]interface{}, errMsg, requestID string) {
	resp := models.Response{
		Action:    action,
		Status:    status,
		Data:      data,
		Error:     errMsg,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		log.Printf("BRIDGE: Failed to serialize response event: %v", err)
		return
	}
	b.publisher.Publish(b.cfg.Scheduler.ResponseTopic, raw)
}
