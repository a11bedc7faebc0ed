package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/minchang/zipscout/pkg/client"
	"github.com/minchang/zipscout/pkg/common"
	"github.com/minchang/zipscout/pkg/locations"
	"github.com/minchang/zipscout/pkg/messaging"
	"github.com/minchang/zipscout/pkg/server"
	"github.com/minchang/zipscout/pkg/storage"
	"github.com/minchang/zipscout/pkg/tracking"
	"github.com/minchang/zipscout/pkg/types"
)

var enableProfiling = flag.Bool("profiling", false, "enable profiling endpoints")

var listenAddress = ":8080"
var debugAddress = ":8081"

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupLogging() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))
}

func main() {
	flag.Parse()
	_ = godotenv.Load()
	setupLogging()

	upstreamUrl := env("UPSTREAM_URL", "http://localhost:8000")
	locationsUrl := env("LOCATIONS_URL", upstreamUrl)
	country := env("COUNTRY", "kr")
	storagePath := env("STORAGE_PATH", "data")
	tokenKey := os.Getenv("TOKEN_KEY")
	if tokenKey == "" {
		log.Fatalf("No token key provided")
	}

	var cache locations.Cache
	redisUrl := os.Getenv("REDIS_URL")
	if redisUrl != "" {
		redisCache := server.NewCache(redisUrl, os.Getenv("REDIS_PASSWORD"), 0)
		defer redisCache.Close()
		cache = redisCache
		log.Printf("Cache enabled, url: %s", redisUrl)
	}

	loc := locations.NewProvider(locationsUrl, cache)
	store := storage.NewDiskStorage(country, storagePath)
	ws := server.NewWebServer(client.NewFetcher(upstreamUrl), loc, store, []byte(tokenKey))
	ws.Cache = cache

	rabbitUrl := os.Getenv("RABBIT_URL")
	if rabbitUrl != "" {
		trk, err := tracking.NewRabbitTracking(rabbitUrl, country)
		if err != nil {
			log.Printf("Failed to create rabbit tracking, %v", err)
		} else {
			ws.Tracking = trk
			defer trk.Close()
		}
		if err := connectPresetSync(rabbitUrl, country, ws); err != nil {
			log.Printf("Failed to connect preset sync, %v", err)
		}
	}

	debugMux := http.NewServeMux()
	debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.Handle("/metrics", promhttp.Handler())
	if enableProfiling != nil && *enableProfiling {
		log.Println("Profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	go func() {
		log.Printf("Starting debug server %v", debugAddress)
		log.Fatal(http.ListenAndServe(debugAddress, debugMux))
	}()

	cfg := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       15 * time.Second,
		Write:      30 * time.Second,
		Idle:       60 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	})
	srv := common.NewServerWithTimeouts(&http.Server{
		Addr:    listenAddress,
		Handler: ws.Handle(),
	}, cfg)
	common.RunServerWithShutdown(srv, "listing api", cfg.Shutdown, cfg.Hook, ws.SaveNow)
}

// connectPresetSync broadcasts preset saves to the other instances and
// applies theirs.
func connectPresetSync(url, country string, ws *server.WebServer) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := messaging.DefineTopic(ch, country, messaging.PresetsChanged); err != nil {
		ch.Close()
		return err
	}
	err = messaging.ListenToTopic(ch, country, messaging.PresetsChanged, func(d amqp.Delivery) error {
		var presets []types.Preset
		if err := sonic.Unmarshal(d.Body, &presets); err != nil {
			log.Printf("Bad preset broadcast, %v", err)
			return nil
		}
		ws.ReloadPresets(presets)
		return nil
	})
	if err != nil {
		return err
	}
	ws.OnPresetsChanged = func(presets []types.Preset) {
		if err := messaging.SendChange(conn, country, messaging.PresetsChanged, presets); err != nil {
			log.Printf("Failed to broadcast presets, %v", err)
		}
	}
	return nil
}
