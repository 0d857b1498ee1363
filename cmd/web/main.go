// cmd/web/main.go
//
// Milli site – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load configuration (conf/.env → conf/global.yaml → MILLI_* env).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Open the optional GeoLite2 database for request hints.
//
//  4. Apply operator form overrides from forms.override_dir.
//
//  5. Build the root router: middleware, /healthz, /metrics, and every
//     component registered through the blank imports below.
//
//  6. Serve until SIGINT/SIGTERM, then drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanizio/milli/internal/config"
	"github.com/yanizio/milli/internal/form"
	"github.com/yanizio/milli/internal/logger"
	"github.com/yanizio/milli/internal/requestinfo"
	"github.com/yanizio/milli/internal/router"
	"github.com/yanizio/milli/internal/server"

	_ "github.com/yanizio/milli/components/contact" // POST /api/contact
	_ "github.com/yanizio/milli/components/site"    // GET /, /static/*
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(logger.Options{
		Dir:   cfg.LogDir(),
		Level: cfg.Log.Level,
		Tee:   logger.RunningInTTY(),
	})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Optional geo hints ──────────────────────────────────────────
	//
	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		logOut.Warnw("geo hints disabled", "err", err)
	}

	//
	// ── 2.  Form overrides ──────────────────────────────────────────────
	//
	if dir := cfg.FormsDir(); dir != "" {
		if err := form.RegisterForms([]string{dir}); err != nil {
			logOut.Fatalw("load form overrides", "dir", dir, "err", err)
		}
	}

	//
	// ── 3.  Router and server ───────────────────────────────────────────
	//
	handler, err := router.New(cfg, logOut)
	if err != nil {
		logOut.Fatalw("build router", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, server.New(cfg.HTTP.ListenAddr, handler), nil, logOut); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
	logOut.Info("stopped")
}
