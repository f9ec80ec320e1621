package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"blog/pkg/api"
	"blog/pkg/generate"
	"blog/pkg/session"
	"blog/pkg/storage"
	"blog/pkg/storage/memdb"
	"blog/pkg/storage/postgres"
	"blog/pkg/uploader"
)

// Config holds the non-secret settings. Secrets (database password,
// session secret, API keys) come from the environment, optionally via
// a .env file.
type Config struct {
	HTTPAddr        string `toml:"httpAddr"`
	LogLevel        string `toml:"logLevel"`
	SessionTTLHours int    `toml:"sessionTTLHours"`

	KafkaBrokers []string `toml:"kafkaBrokers"`
	KafkaTopic   string   `toml:"kafkaTopic"`

	Generate struct {
		APIURL     string `toml:"apiURL"`
		Model      string `toml:"model"`
		TimeoutSec int    `toml:"timeoutSec"`
	} `toml:"generate"`

	Upload struct {
		APIURL     string `toml:"apiURL"`
		Preset     string `toml:"preset"`
		Folder     string `toml:"folder"`
		TimeoutSec int    `toml:"timeoutSec"`
	} `toml:"upload"`

	OAuth struct {
		AuthURL     string   `toml:"authURL"`
		TokenURL    string   `toml:"tokenURL"`
		UserInfoURL string   `toml:"userInfoURL"`
		RedirectURL string   `toml:"redirectURL"`
		Scopes      []string `toml:"scopes"`
	} `toml:"oauth"`
}

func main() {
	var (
		configPath string
		httpAddr   string
		logLevel   string
		dev        bool
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	flag.StringVar(&configPath, "config", "cmd/server/config.toml", "Path to TOML config file")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'; overrides the config file.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error; overrides the config file.")
	flag.BoolVar(&dev, "dev", false, "Run the server in development mode with in-memory DB.")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debugf("[server] no .env file loaded: %v", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Fatalf("[server] failed to load config file %s: %v", configPath, err)
	}

	// Flags win over the config file.
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if !strings.Contains(cfg.HTTPAddr, ":") {
		log.Warn("use ':' before port number, e.g. ':8080'")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info", "":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		if !dev {
			log.Fatal("[server] SESSION_SECRET is not set")
		}
		secret = "dev-only-secret"
	}

	var sdb storage.Storage
	switch dev {
	case false:
		conf := postgres.Config{
			User:     "postgres",
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			DBName:   "blog",
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
			MaxConns: 8,
		}
		if !conf.IsValid() {
			log.Fatal(fmt.Errorf("invalid postgres config: %+v", conf))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := postgres.New(ctx, conf.ConString())
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()

		if err := db.Ping(ctx); err != nil {
			log.Fatal(fmt.Errorf("%w: %v", storage.ErrDBNotResponding, err))
		}
		if err := db.Init(ctx); err != nil {
			log.Fatalf("[server] failed to initialise schema: %v", err)
		}
		log.Infof("connected to postgres: %s", conf)
		sdb = db

	case true:
		log.Info("Run server with in memory DB")
		sdb = memdb.New()
	}

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	deps := api.Deps{
		DB:       sdb,
		Sessions: session.NewManager(secret, ttl),
	}

	if key := os.Getenv("GENERATE_API_KEY"); key != "" && cfg.Generate.APIURL != "" {
		deps.Generator = generate.NewClient(
			cfg.Generate.APIURL,
			key,
			cfg.Generate.Model,
			time.Duration(cfg.Generate.TimeoutSec)*time.Second,
		)
	} else {
		log.Warn("[server] content generation disabled: no API key or URL configured")
	}

	if cfg.Upload.APIURL != "" {
		deps.Uploader = uploader.NewClient(
			cfg.Upload.APIURL,
			cfg.Upload.Preset,
			cfg.Upload.Folder,
			time.Duration(cfg.Upload.TimeoutSec)*time.Second,
		)
	} else {
		log.Warn("[server] image uploads disabled: no upload URL configured")
	}

	clientID, clientSecret := os.Getenv("OAUTH_CLIENT_ID"), os.Getenv("OAUTH_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" && cfg.OAuth.TokenURL != "" {
		deps.OAuth = &api.OAuthConfig{
			Config: oauth2.Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  cfg.OAuth.AuthURL,
					TokenURL: cfg.OAuth.TokenURL,
				},
				RedirectURL: cfg.OAuth.RedirectURL,
				Scopes:      cfg.OAuth.Scopes,
			},
			UserInfoURL: cfg.OAuth.UserInfoURL,
		}
	} else {
		log.Warn("[server] oauth login disabled: no client credentials configured")
	}

	if len(cfg.KafkaBrokers) > 0 {
		kw := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer kw.Close()
		deps.KafkaLog = kw
	} else {
		log.Warn("[server] request logging to Kafka disabled: no brokers configured")
	}

	a := api.New("blog", deps)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: a.Router,
	}

	go func() {
		log.Infof("[server] listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
		log.Info("Stopped serving new connections")
	}()

	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	log.Info("Graceful shutdown complete")
}
