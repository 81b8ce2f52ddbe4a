// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/hospital-booking/auth"
	"github.com/ariebrainware/hospital-booking/booking"
	"github.com/ariebrainware/hospital-booking/config"
	"github.com/ariebrainware/hospital-booking/endpoint"
	"github.com/ariebrainware/hospital-booking/middleware"
	"github.com/ariebrainware/hospital-booking/notify"
	"github.com/ariebrainware/hospital-booking/store"
	"github.com/ariebrainware/hospital-booking/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	// `hospital-booking hash-password <pw>` prints a value for ADMIN_PASSWORD_HASH
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		os.Exit(hashPassword(os.Args[2:]))
	}

	// Load the configuration
	cfg := config.LoadConfig()
	util.InitLogger(cfg.AppName, cfg.AppEnv)

	rdb, err := config.ConnectRedis()
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-process rate limiting and token revocation")
	}

	setupGeoIP(cfg)
	defer util.CloseGeoIP()

	ctx := context.Background()
	records, err := store.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("error connecting to record store")
	}
	if err := records.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("error initializing record store")
	}
	defer records.Close()
	util.SetAuditSink(records)

	secret := sessionSecret(cfg)
	tokens := auth.NewTokenIssuer(secret, cfg.TokenTTL)
	revoker := auth.NewRevoker(rdb)
	service := booking.NewService(records, notify.NewGateway(cfg), cfg.NotifyTimeout)

	handler := endpoint.NewHandler(endpoint.HandlerDeps{
		Authenticator: auth.NewAuthenticator(cfg),
		Tokens:        tokens,
		Revoker:       revoker,
		Bookings:      service,
		Store:         records,
		AppName:       cfg.AppName,
		StaticDir:     cfg.StaticDir,
	})
	router := endpoint.SetupRouter(handler, endpoint.RouterConfig{
		GinMode:        cfg.GinMode,
		AllowedOrigins: cfg.AllowedOrigins,
		SessionSecret:  secret,
		SessionTTL:     cfg.TokenTTL,
		SecureCookies:  cfg.AppEnv == "production",
		LoginRateLimit: middleware.RateLimitConfig{Limit: cfg.LoginRateLimit, Window: cfg.LoginRateWindow},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreBackend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("error starting server")
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// sessionSecret picks the key for cookies and tokens. Without one configured
// sessions do not survive a restart.
func sessionSecret(cfg *config.Config) string {
	switch {
	case cfg.JWTSecret != "":
		return cfg.JWTSecret
	case cfg.SecretKey != "":
		return cfg.SecretKey
	default:
		log.Warn().Msg("JWTSECRET and SECRET_KEY are unset, using a random per-process secret")
		return uuid.NewString() + uuid.NewString()
	}
}

func setupGeoIP(cfg *config.Config) {
	if cfg.GeoIPPath == "" {
		return
	}
	if _, err := os.Stat(cfg.GeoIPPath); errors.Is(err, os.ErrNotExist) && cfg.GeoIPURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := util.DownloadGeoIPWithRequest(ctx, util.DownloadRequest{URL: cfg.GeoIPURL, DestPath: cfg.GeoIPPath}); err != nil {
			log.Warn().Err(err).Msg("geoip download failed")
			return
		}
	}
	if err := util.ValidateGeoIP(cfg.GeoIPPath); err != nil {
		log.Warn().Err(err).Str("path", cfg.GeoIPPath).Msg("geoip database invalid, audit entries carry no location")
		return
	}
	if err := util.InitGeoIP(cfg.GeoIPPath); err != nil {
		log.Warn().Err(err).Msg("geoip init failed")
	}
}

func hashPassword(args []string) int {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(os.Stderr, "usage: hospital-booking hash-password <password>")
		return 2
	}
	hash, err := auth.HashPassword(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(hash)
	return 0
}
