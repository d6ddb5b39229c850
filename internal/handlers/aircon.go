package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"airbridge/internal/config"
)

// AirconHandler forwards control payloads to the aircon HTTP API as query
// parameters.
type AirconHandler struct {
	apiURL     string
	client     *http.Client
	attempts   int
	retryDelay time.Duration
}

// NewAirconHandler creates an uninitialized aircon handler.
func NewAirconHandler() *AirconHandler {
	return &AirconHandler{
		client:     &http.Client{Timeout: 10 * time.Second},
		attempts:   3,
		retryDelay: 2 * time.Second,
	}
}

// Initialize reads the device configuration.
func (h *AirconHandler) Initialize(cfg config.DeviceConfig) error {
	if cfg.APIURL == "" {
		return fmt.Errorf("aircon handler requires api_url")
	}
	if strings.Count(cfg.APIURL, "http://") > 1 || strings.Count(cfg.APIURL, "https://") > 1 {
		log.Printf("HANDLERS: Suspicious API URL %q, check config.yaml", cfg.APIURL)
	}
	h.apiURL = cfg.APIURL
	log.Printf("HANDLERS: AirconHandler initialized with API URL: %s", h.apiURL)
	return nil
}

// Handle sends the payload to the aircon control endpoint, retrying
// failed calls a fixed number of times.
func (h *AirconHandler) Handle(ctx context.Context, topic string, payload map[string]interface{}) error {
	params := url.Values{}
	for k, v := range payload {
		params.Set(k, fmt.Sprintf("%v", v))
	}

	// The device firmware rejects power-off requests that carry no mode or
	// temperature, so force known-good values.
	if params.Get("power_on") == "false" {
		params.Set("mode", "cool")
		params.Set("temperature", "23")
	}

	var lastErr error
	for attempt := 1; attempt <= h.attempts; attempt++ {
		err := h.callAPI(ctx, params)
		if err == nil {
			log.Println("HANDLERS: Aircon control command sent successfully")
			return nil
		}
		lastErr = err
		log.Printf("HANDLERS: Aircon API call failed (attempt %d/%d): %v", attempt, h.attempts, err)
		if attempt < h.attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.retryDelay):
			}
		}
	}
	return lastErr
}

func (h *AirconHandler) callAPI(ctx context.Context, params url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.apiURL+"/aircon/control?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API call failed: %d - %s", resp.StatusCode, string(body))
	}
	return nil
}
