// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/tablestakes/holdem/internal/config"
	"github.com/tablestakes/holdem/internal/handlers"
	"github.com/tablestakes/holdem/internal/history"
	"github.com/tablestakes/holdem/internal/middleware"
	"github.com/tablestakes/holdem/internal/room"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if cfg.RedisAddr != "" {
		if err := history.Connect(cfg.RedisAddr, cfg.HistoryQueueName); err != nil {
			logger.Warnf("Hand history disabled, redis unavailable: %v", err)
		} else {
			logger.Infof("Hand history queued to redis at %s (%s)", cfg.RedisAddr, cfg.HistoryQueueName)
		}
	}

	manager := room.NewManager(logger, cfg)

	mux := http.NewServeMux()

	// room endpoints
	mux.Handle("/rooms/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateRoomHandler(manager),
	)))
	mux.Handle("/rooms/list", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListRoomsHandler(manager),
	)))

	// room ws
	mux.Handle("/rooms/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, manager),
	)))

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
