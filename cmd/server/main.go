package main

import (
	"log/slog"
	"net/http"
	"os"

	"arena/config"
	"arena/network"
	"arena/room"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	manager := room.NewManager(log)
	server := network.NewServer(manager, cfg.AllowedOrigin, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	mux.HandleFunc("/rooms", server.HandleRooms)

	log.Info("listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Error("serve", "err", err)
		os.Exit(1)
	}
}
