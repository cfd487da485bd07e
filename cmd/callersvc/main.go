package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/tambola-services/configs"
	"github.com/avvvet/tambola-services/internal/callersvc/broker"
	"github.com/avvvet/tambola-services/internal/callersvc/handlers"
	"github.com/avvvet/tambola-services/internal/comm"
	natscli "github.com/avvvet/tambola-services/internal/nats"
	"github.com/avvvet/tambola-services/internal/tts"
)

const SERVICE_NAME = "caller"

func init() {
	instanceId := "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	speaker, err := tts.New(tts.Config{
		BaseURL:  config.GetEnv("ELEVENLABS_BASE_URL", tts.DefaultBaseURL),
		APIKey:   os.Getenv("ELEVENLABS_API_KEY"),
		VoiceID:  config.GetEnv("ELEVENLABS_VOICE_ID", tts.DefaultVoiceID),
		CacheDir: config.GetEnv("TTS_CACHE_DIR", "tts-cache"),
		Timeout:  config.GetEnvAsDuration("TTS_TIMEOUT", "15s"),
	})
	if err != nil {
		log.Fatalf("Failed to init tts: %v", err)
	}
	if !speaker.Enabled() {
		log.Warn("ELEVENLABS_API_KEY not set, TTS endpoint will return 501")
	}

	// connect to NATS
	n, err := natscli.Connect(SERVICE_NAME)
	if err != nil {
		log.Fatalf("unable to connect to NATS: %v", err)
	}
	defer n.Conn.Close()
	log.Infof("NATS connected at %s", n.Url)

	b := broker.NewBroker(n.Conn, speaker)
	sub, err := b.Subscribe(comm.SubjectAnnounce)
	if err != nil {
		log.Fatalf("subscribe error: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(config.CORS().Handler)
	r.Use(httprate.LimitByIP(config.GetEnvAsInt("RATE_LIMIT", 100), 1*time.Minute))

	handlers.NewHandler(speaker, config.TokenAuth()).SetRoutes(r)

	server := &http.Server{
		Addr:         ":" + config.GetEnv("CALLER_SERVICE_PORT", "8082"),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

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
