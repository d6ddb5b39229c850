package main

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airbridge/auth"
	"airbridge/internal/bridge"
	"airbridge/internal/config"
	"airbridge/internal/handlers"
	"airbridge/internal/mqtt"
	"airbridge/internal/schedule"
	"airbridge/internal/scheduler"
	"airbridge/internal/statecache"
	"airbridge/internal/timesync"
	"airbridge/internal/web"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	mqttClient, err := mqtt.NewMQTTClient(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password)
	if err != nil {
		log.Fatalf("Failed to connect to MQTT: %v", err)
	}

	registry, err := handlers.NewRegistry(cfg.Devices)
	if err != nil {
		log.Fatalf("Failed to initialize device handlers: %v", err)
	}

	var cache *statecache.Cache
	if cfg.Redis.Addr != "" {
		cache = statecache.NewCache(cfg.Redis.Addr)
	}

	manager := schedule.NewManager(cfg.Scheduler.StoragePath, cfg.Scheduler.TimezoneOffsetMinutes)
	clock := timesync.NewService(cfg.Scheduler.NTPServer, time.Duration(cfg.Scheduler.SyncIntervalSeconds)*time.Second)

	br := bridge.NewBridge(cfg, manager, clock, registry, cache, bridge.NewMQTTPublisher(mqttClient))
	if err := br.Start(mqttClient); err != nil {
		log.Fatalf("Failed to start bridge: %v", err)
	}

	sched := scheduler.NewScheduler()
	if cfg.Scheduler.Enabled {
		clock.Start()
		// The tick itself is gated inside the bridge; the 1s cadence just
		// keeps the gate responsive.
		if _, err := sched.AddJob("@every 1s", br.ProcessSchedules); err != nil {
			log.Fatalf("Failed to schedule tick job: %v", err)
		}
	} else {
		log.Println("Scheduler is disabled")
	}
	sched.Start()

	authModule := auth.NewAuthModule(cfg.Web.JWTSecret, cfg.Web.AdminUser, cfg.Web.AdminPasswordHash)
	webServer := web.NewWebServer(manager, cache, authModule)
	go webServer.Start(cfg.Web.Addr)

	if cfg.MDNS.Enabled {
		go startMDNSServer(cfg.MDNS.LocalName)
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	sched.Stop()
	clock.Stop()
	br.Stop()
	log.Println("Shutdown complete")
}

func startMDNSServer(localName string) {
	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		log.Println("Failed to resolve UDP4 address for mDNS:", err)
		return
	}

	addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6)
	if err != nil {
		log.Println("Failed to resolve UDP6 address for mDNS:", err)
		return
	}

	l4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		log.Println("Failed to listen on UDP4 for mDNS:", err)
		return
	}

	l6, err := net.ListenUDP("udp6", addr6)
	if err != nil {
		log.Println("Failed to listen on UDP6 for mDNS:", err)
		return
	}

	_, err = mdns.Server(ipv4.NewPacketConn(l4), ipv6.NewPacketConn(l6), &mdns.Config{
		LocalNames: []string{localName},
	})
	if err != nil {
		log.Println("Failed to start mDNS server:", err)
	}
}
