package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MQTTConfig holds broker connection settings
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// DeviceConfig describes one device the bridge forwards commands to
type DeviceConfig struct {
	Type   string   `mapstructure:"type"`
	APIURL string   `mapstructure:"api_url"`
	Topics []string `mapstructure:"topics"`
}

// SchedulerConfig holds the scheduling engine settings
type SchedulerConfig struct {
	Enabled               bool              `mapstructure:"enabled"`
	TimezoneOffsetMinutes int               `mapstructure:"timezone_offset_minutes"`
	StoragePath           string            `mapstructure:"storage_path"`
	NTPServer             string            `mapstructure:"ntp_server"`
	SyncIntervalSeconds   int               `mapstructure:"sync_interval_seconds"`
	TickIntervalSeconds   int               `mapstructure:"tick_interval_seconds"`
	Topics                map[string]string `mapstructure:"topics"` // action -> topic
	ResponseTopic         string            `mapstructure:"response_topic"`
}

// WebConfig holds the management API settings
type WebConfig struct {
	Addr              string `mapstructure:"addr"`
	JWTSecret         string `mapstructure:"jwt_secret"`
	AdminUser         string `mapstructure:"admin_user"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
}

// RedisConfig holds the device state cache settings
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// MDNSConfig holds local discovery settings
type MDNSConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	LocalName string `mapstructure:"local_name"`
}

// Config holds application configuration
type Config struct {
	MQTT      MQTTConfig              `mapstructure:"mqtt"`
	Devices   map[string]DeviceConfig `mapstructure:"devices"`
	Scheduler SchedulerConfig         `mapstructure:"scheduler"`
	Web       WebConfig               `mapstructure:"web"`
	Redis     RedisConfig             `mapstructure:"redis"`
	MDNS      MDNSConfig              `mapstructure:"mdns"`
}

// LoadConfig reads configuration from config.yaml, .env, or env vars
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("CONFIG: No .env file loaded: %v", err)
	}

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("mqtt.client_id", "aircon-bridge")
	viper.SetDefault("scheduler.storage_path", "schedules.json")
	viper.SetDefault("scheduler.ntp_server", "pool.ntp.org")
	viper.SetDefault("scheduler.sync_interval_seconds", 3600)
	viper.SetDefault("scheduler.tick_interval_seconds", 30)
	viper.SetDefault("scheduler.response_topic", "aircon/schedule/response")
	viper.SetDefault("web.addr", ":5069")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if len(cfg.Scheduler.Topics) == 0 {
		cfg.Scheduler.Topics = map[string]string{
			"create": "aircon/schedule/create",
			"update": "aircon/schedule/update",
			"delete": "aircon/schedule/delete",
			"list":   "aircon/schedule/list",
		}
	}
	return cfg, nil
}
