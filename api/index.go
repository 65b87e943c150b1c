package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/linkvault/pkg/app"
	"github.com/wadjakorntonsri/linkvault/pkg/config"
	"github.com/wadjakorntonsri/linkvault/pkg/logging"
)

var mux http.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, _ := logging.New(logging.Options{AppEnv: cfg.AppEnv, Level: cfg.LogLevel})

	// Note: On Vercel, a file DATABASE_URL is ephemeral; use a libsql:// (Turso) URL.
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	go a.Visits.Start(context.Background())
	mux = a.Router()
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
