package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/funtimes-demosync/internal/app"
	"github.com/coreman2200/funtimes-demosync/internal/config"
	"github.com/coreman2200/funtimes-demosync/internal/driver/logsink"
	"github.com/coreman2200/funtimes-demosync/internal/render"
	"github.com/coreman2200/funtimes-demosync/internal/ws"
)

func main() {
	// ---- Flags (config.yaml overrides where set) ----
	var (
		configPath  = pflag.StringP("config", "c", "config.yaml", "path to player config")
		projectPath = pflag.StringP("project", "p", "project.yaml", "path to project description")
		addr        = pflag.String("addr", ":8080", "editor/health listen address")
		fps         = pflag.Int("fps", 60, "target frames per second")
		winW        = pflag.Int("width", 1280, "window width")
		winH        = pflag.Int("height", 720, "window height")
		paused      = pflag.Bool("paused", false, "start paused (editor drives the row)")
		logLevel    = pflag.String("log-level", "info", "zerolog level")
		logEvery    = pflag.Uint64("log-every", 0, "log every Nth frame at info (0 = debug only)")
	)
	pflag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	var cfg *config.Config
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}

	eAddr, eFPS, eProject, eLevel, ePaused := *addr, *fps, *projectPath, *logLevel, *paused
	vp := app.Viewport{Window: config.Size{W: *winW, H: *winH}, Screen: config.Size{W: *winW, H: *winH}}
	if cfg != nil {
		eAddr = firstNonEmpty(cfg.Addr, eAddr)
		eProject = firstNonEmpty(cfg.Project, eProject)
		eLevel = firstNonEmpty(cfg.LogLevel, eLevel)
		if cfg.FPS > 0 {
			eFPS = cfg.FPS
		}
		if cfg.Window.W > 0 && cfg.Window.H > 0 {
			vp.Window = cfg.Window
		}
		if cfg.Screen.W > 0 && cfg.Screen.H > 0 {
			vp.Screen = cfg.Screen
		}
		ePaused = ePaused || cfg.Paused
	}

	lvl, err := zerolog.ParseLevel(eLevel)
	if err != nil {
		log.Warn().Err(err).Str("level", eLevel).Msg("bad log level; using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	// ---- Project + core ----
	proj, err := config.LoadProject(eProject)
	if err != nil {
		log.Fatal().Err(err).Str("path", eProject).Msg("project load failed")
	}
	core, err := app.FromProject(proj, vp)
	if err != nil {
		log.Fatal().Err(err).Str("path", eProject).Msg("project wiring failed")
	}
	core.SetPaused(ePaused)
	log.Info().
		Str("project", eProject).
		Float64("bpm", proj.BPM).
		Uint8("rpb", proj.RowsPerBeat).
		Int("tracks", core.TrackCount()).
		Msg("project loaded")

	// ---- Editor + frame path ----
	editor := ws.NewServer(core, log.With().Str("component", "editor").Logger())
	sink := render.Sinks{
		logsink.New(log.With().Str("component", "frames").Logger(), *logEvery),
		editor,
	}
	conductor := render.NewConductor(core, sink, eFPS, log.With().Str("component", "conductor").Logger())

	mux := http.NewServeMux()
	editor.Routes(mux)
	srv := &http.Server{
		Addr:         eAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run render loop & server until a signal arrives ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return conductor.Run(ctx) })
	g.Go(func() error {
		log.Info().Str("addr", eAddr).Int("fps", eFPS).Bool("paused", ePaused).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("player stopped")
	}
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
