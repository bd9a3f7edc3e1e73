package main

import (
	"log"
	"net/http"
)

func main() {
	cfg := loadConfig()

	h := newHub(cfg.RedundantDelay, cfg.ReconnectGrace)
	reg := newRegistry(cfg.TickInterval, h.broadcast)
	h.reg = reg

	log.Printf("listening on %s (tick %s)", cfg.Addr, cfg.TickInterval)
	log.Fatal(http.ListenAndServe(cfg.Addr, newMux(reg, h)))
}
