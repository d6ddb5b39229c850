package models

// Repeat describes how a schedule recurs across days of the week.
type Repeat struct {
	Type string `json:"type"`           // "daily", "weekdays", "weekends", "custom"
	Days []int  `json:"days,omitempty"` // for "custom": weekday indexes, Monday=0..Sunday=6
}

// Schedule represents a recurring device-control rule
type Schedule struct {
	ID               string                 `json:"id"`
	Enabled          *bool                  `json:"enabled,omitempty"`
	Time             string                 `json:"time"` // "HH:MM" trigger time in the local timezone
	StartDate        string                 `json:"start_date,omitempty"`
	EndDate          string                 `json:"end_date,omitempty"`
	Repeat           *Repeat                `json:"repeat,omitempty"`
	Topic            string                 `json:"topic,omitempty"`
	Payload          map[string]interface{} `json:"payload,omitempty"`
	PowerOn          *bool                  `json:"power_on,omitempty"`
	Mode             string                 `json:"mode,omitempty"`
	Temperature      *int                   `json:"temperature,omitempty"`
	FanSpeed         *int                   `json:"fan_speed,omitempty"`
	LastExecutedSlot string                 `json:"last_executed_slot,omitempty"`
}

// IsEnabled reports whether the schedule takes part in evaluation.
// A schedule without an explicit flag counts as enabled.
func (s *Schedule) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Response is the event published after a schedule operation or trigger
type Response struct {
	Action    string      `json:"action"`
	Status    string      `json:"status"` // "success", "not_found", "error"
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Expand with more models as needed
