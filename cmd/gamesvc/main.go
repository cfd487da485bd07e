package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/avvvet/tambola-services/configs"
	"github.com/avvvet/tambola-services/internal/comm"
	mongodb "github.com/avvvet/tambola-services/internal/db"
	"github.com/avvvet/tambola-services/internal/gamesvc/broker"
	gamecfg "github.com/avvvet/tambola-services/internal/gamesvc/config"
	"github.com/avvvet/tambola-services/internal/gamesvc/db"
	"github.com/avvvet/tambola-services/internal/gamesvc/game"
	handlers "github.com/avvvet/tambola-services/internal/gamesvc/handlers"
	"github.com/avvvet/tambola-services/internal/gamesvc/store"
	nats "github.com/avvvet/tambola-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

// openArchive connects the configured result store. A nil store means
// finished games are not persisted.
func openArchive(cfg gamecfg.Config) (store.ResultStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch cfg.ArchiveDriver {
	case gamecfg.ArchivePostgres:
		pool, err := db.Connect(cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		s := store.NewGameStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			db.ClosePool()
			return nil, nil, err
		}
		log.Printf("pg connection established successfully")
		return s, db.ClosePool, nil

	case gamecfg.ArchiveMongo:
		database, err := mongodb.ConnectToDB(cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewMongoGameStore(database)
		if err := s.EnsureIndexes(ctx, cfg.ArchiveRetention); err != nil {
			mongodb.Disconnect(database)
			return nil, nil, err
		}
		log.Printf("mongo connection established successfully")
		return s, func() { mongodb.Disconnect(database) }, nil

	case gamecfg.ArchiveNone, "":
		log.Warn("ARCHIVE_DRIVER=none, finished games will not be stored")
		return nil, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown ARCHIVE_DRIVER %q", cfg.ArchiveDriver)
}

func main() {
	cfg := gamecfg.Load()

	results, closeArchive, err := openArchive(cfg)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer closeArchive()

	// Connect to NATS
	n, err := nats.Connect(SERVICE_NAME)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// init peer message broker; the broker is also the room notifier
	b := broker.NewBroker(n.Conn)
	opts := []game.Option{game.WithAnnouncer(b)}
	if results != nil {
		opts = append(opts, game.WithArchive(results))
	}
	manager := game.NewManager(b, cfg.Game, opts...)
	b.Manager = manager

	if err := manager.StartSweeper(); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}

	// subscribe to socket service
	sub, err := b.SubscribSocketService(comm.SubjectRequests)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(manager, results, config.TokenAuth())
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()
	manager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
