package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type serverConfig struct {
	Addr           string
	TickInterval   time.Duration
	RedundantDelay time.Duration
	ReconnectGrace time.Duration
}

func loadConfig() serverConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}
	return serverConfig{
		Addr:           envString("ADDR", ":8080"),
		TickInterval:   envDuration("TICK_INTERVAL", defaultTickInterval),
		RedundantDelay: envDuration("REDUNDANT_EMIT_DELAY", defaultRedundantDelay),
		ReconnectGrace: envDuration("RECONNECT_GRACE", reconnectGrace),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	log.Printf("invalid %s=%q, using %s", key, v, fallback)
	return fallback
}
