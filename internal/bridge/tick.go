package bridge

import (
	"log"
	"time"

	"airbridge/internal/models"
)

// ProcessSchedules runs one tick of the due-schedule evaluation. It is
// gated by a monotonic next-check timestamp: calls more frequent than the
// tick interval are no-ops, so it is safe to drive from a fast timer.
func (b *Bridge) ProcessSchedules() {
	b.mu.Lock()
	now := time.Now()
	if now.Before(b.nextCheck) {
		b.mu.Unlock()
		return
	}
	b.nextCheck = now.Add(b.tickInterval)
	b.mu.Unlock()

	current := b.clock.Now()
	due := b.manager.DueSchedules(current)
	for _, s := range due {
		b.executeSchedule(s)
	}
}

// executeSchedule dispatches one due schedule and publishes its outcome as
// a trigger response event. A dispatch failure never propagates; the
// remaining due schedules of the tick still run.
func (b *Bridge) executeSchedule(s models.Schedule) {
	topic := s.Topic
	if topic == "" {
		topic = "aircon/control"
	}
	payload := s.Payload
	if payload == nil {
		payload = buildPayload(s)
	}

	status := "success"
	errMsg := ""
	if err := b.dispatch(topic, payload); err != nil {
		log.Printf("BRIDGE: Failed to dispatch schedule %s: %v", s.ID, err)
		status = "error"
		errMsg = "Failed to dispatch schedule command"
	}

	b.publishResponse("trigger", status, map[string]interface{}{
		"schedule_id": s.ID,
		"topic":       topic,
		"payload":     payload,
	}, errMsg, "")
}

// buildPayload synthesizes a control payload from the schedule's aircon
// fields. Stored schedules are defaults-filled, so the fallbacks here only
// matter for hand-edited storage files.
func buildPayload(s models.Schedule) map[string]interface{} {
	powerOn := true
	if s.PowerOn != nil {
		powerOn = *s.PowerOn
	}
	mode := s.Mode
	if mode == "" {
		mode = "cool"
	}
	temperature := 23
	if s.Temperature != nil {
		temperature = *s.Temperature
	}
	fanSpeed := 3
	if s.FanSpeed != nil {
		fanSpeed = *s.FanSpeed
	}
	return map[string]interface{}{
		"power_on":    powerOn,
		"mode":        mode,
		"temperature": temperature,
		"fan_speed":   fanSpeed,
	}
}
