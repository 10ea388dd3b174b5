package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soaringjerry/MindBalance/internal/api"
	"github.com/soaringjerry/MindBalance/internal/config"
	"github.com/soaringjerry/MindBalance/internal/middleware"
	"github.com/soaringjerry/MindBalance/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Printf("server stopped")
}

// run serves until ctx is cancelled. The store is closed before it returns.
func run(ctx context.Context, cfg config.Config) error {
	store, closer, err := storeOpener(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			log.Printf("warning: failed to close store: %v", cerr)
		}
	}()
	if middleware.UsingDevSecret() {
		log.Printf("warning: MINDBALANCE_JWT_SECRET not set, using the development secret")
	}

	mux := http.NewServeMux()
	// API routes
	api.NewRouter(store, api.Options{TrendDays: cfg.TrendDays}).Register(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "MindBalance API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"store":      cfg.Store,
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})

	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})

	// Frontend serving strategy (priority):
	// 1) Static files if MINDBALANCE_STATIC_DIR is set
	// 2) Dev proxy if MINDBALANCE_DEV_FRONTEND_URL is set
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	} else if cfg.DevFrontendURL != "" {
		if u, err := url.Parse(cfg.DevFrontendURL); err == nil {
			rp := httputil.NewSingleHostReverseProxy(u)
			rp.ModifyResponse = func(res *http.Response) error {
				res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
				res.Header.Set("Pragma", "no-cache")
				res.Header.Set("Expires", "0")
				return nil
			}
			mux.Handle("/", rp)
		} else {
			log.Printf("invalid MINDBALANCE_DEV_FRONTEND_URL=%q: %v", cfg.DevFrontendURL, err)
		}
	}

	var handler http.Handler = mux
	handler = middleware.WithAuth(handler)
	handler = middleware.LocaleMiddleware(handler)
	handler = middleware.NoStore(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(handler)
	handler = middleware.SecureHeaders(handler)
	handler = middleware.RequestLog(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("MindBalance server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
