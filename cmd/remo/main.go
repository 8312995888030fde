package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/remolabs/remo/internal/api"
	"github.com/remolabs/remo/internal/catalog"
	"github.com/remolabs/remo/internal/identity"
	"github.com/remolabs/remo/internal/server"
	"github.com/remolabs/remo/internal/session"
	"github.com/remolabs/remo/internal/store"
)

func main() {
	port := getEnv("PORT", "8090")
	apiURL := getEnv("REMO_API_URL", "http://127.0.0.1:8000/api")
	dataDir := getEnv("REMO_DATA_DIR", defaultDataDir())

	st, err := store.Open(filepath.Join(dataDir, "remo"))
	if err != nil {
		log.Fatalf("local store open failed: %v", err)
	}
	defer st.Close()

	backend := api.New(apiURL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := backend.Health(ctx); err != nil {
		log.Printf("comment backend unreachable at %s, starting degraded: %v", apiURL, err)
	}
	cancel()

	cat := catalog.New(backend, st)
	sessions := session.NewManager(backend, st, cat)
	ident := identity.NewManager(st, backend)

	srv := server.New(server.Config{
		Prober:   backend,
		Catalog:  cat,
		Sessions: sessions,
		Identity: ident,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("remo listening on :%s (backend %s)", port, apiURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("shutdown complete")
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return "."
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
