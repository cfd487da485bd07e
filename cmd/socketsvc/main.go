package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/avvvet/tambola-services/internal/nats"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/tambola-services/configs"

	"github.com/avvvet/tambola-services/internal/socketsvc/broker"
	"github.com/avvvet/tambola-services/internal/socketsvc/routes"
	"github.com/avvvet/tambola-services/internal/socketsvc/ws"
)

const SERVICE_NAME = "socket"

func init() {
	instanceId := "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	config.CreateUniqueInstance(SERVICE_NAME)

	// Connect to NATS
	n, err := nats.Connect(SERVICE_NAME)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(config.GetEnvAsInt("RATE_LIMIT", 100), 1*time.Minute))

	// Initialize websocket handler
	s := ws.NewWs(ws.Config{
		RequestTimeout: config.GetEnvAsDuration("REQUEST_TIMEOUT", "5s"),
		MsgRate:        config.GetEnvAsFloat("MSG_RATE", 10),
		MsgBurst:       config.GetEnvAsInt("MSG_BURST", 20),
	})

	// Initialize routes
	routes.SetRoutes(r, s, config.TokenAuth())

	b := broker.NewBroker(n.Conn, s.Deliver)
	s.Broker = b

	// subscribe to game server
	sub, err := b.Subscribe(comm.SubjectEvents)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Create server with timeout settings
	server := &http.Server{
		Addr:        ":" + config.GetEnv("SOCKET_SERVICE_PORT", "8081"),
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
