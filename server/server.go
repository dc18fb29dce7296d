package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Bt1QRadio/config"
	"Bt1QRadio/core/audio"
	"Bt1QRadio/core/control"
	"Bt1QRadio/core/input"
	"Bt1QRadio/core/mpd"
	"Bt1QRadio/core/notify"
	"Bt1QRadio/core/player"
	"Bt1QRadio/logger"
	"Bt1QRadio/store"

	"github.com/gorilla/mux"
)

// Start wires the appliance together and runs until SIGINT/SIGTERM or a
// protocol kill command.
func Start() {
	cfg := config.Load()

	st := openStore(cfg)
	defer st.Close()

	ctrl := audio.NewNop() // hardware pipeline attaches here
	playlist := player.NewPlaylist(cfg.PlaylistCapacity, st)
	p := player.NewPlayer(ctrl, st, playlist)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loadCtx, loadCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := playlist.Load(loadCtx); err != nil {
		logger.Warn("failed to load playlist", logger.ErrorField(err))
	}
	if err := p.LoadState(loadCtx); err != nil {
		logger.Warn("failed to load player state", logger.ErrorField(err))
	}
	loadCancel()

	hub := notify.NewHub()
	go hub.Run()
	defer hub.Stop()

	bridge := notify.NewBridge(p, hub, notify.NopDisplay{})
	flags := &input.Flags{}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// The protocol kill command asks for a full process restart; the
	// supervisor brings the service back up.
	restart := func() {
		logger.Info("restarting on protocol request")
		stop <- syscall.SIGTERM
	}

	mpdSrv := mpd.NewServer(cfg.MPDAddr, p, restart)
	if err := mpdSrv.Start(); err != nil {
		logger.Fatal("failed to start protocol server", logger.ErrorField(err))
	}
	defer mpdSrv.Stop()

	loop := control.New(p, ctrl, mpdSrv, bridge, flags, cfg.ControlTick, cfg.StreamRetryWait)
	go loop.Run(ctx)

	if cfg.StationsFile != "" {
		seedPlaylist(ctx, cfg.StationsFile, playlist)
		go watchStations(ctx, cfg.StationsFile, playlist)
	}

	api := NewAPIHandler(p, st, flags)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/api/status", api.StatusHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/play", api.PlayHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/stop", api.StopHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/next", api.NextHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/previous", api.PreviousHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/volume", api.VolumeHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tone", api.ToneHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist", api.PlaylistHandler).Methods(http.MethodGet, http.MethodPost, http.MethodDelete)
	router.HandleFunc("/api/input", api.InputHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/config", api.ConfigHandler).Methods(http.MethodGet, http.MethodPut)
	router.HandleFunc("/api/config/wifi", api.WifiHandler).Methods(http.MethodPut)
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r)
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", logger.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start HTTP server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced to shutdown", logger.ErrorField(err))
	}

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer saveCancel()
	if err := p.SaveState(saveCtx); err != nil {
		logger.Warn("failed to persist player state on shutdown", logger.ErrorField(err))
	}

	logger.Info("stopped")
}

// openStore connects to redis, falling back to process memory so the
// appliance still plays without its document store (state then lives for
// the process lifetime only).
func openStore(cfg *config.Config) store.Store {
	st, err := store.NewRedisStore(cfg)
	if err != nil {
		logger.Warn("document store unavailable, using in-memory state", logger.ErrorField(err))
		return store.NewMemoryStore()
	}
	logger.Info("connected to document store",
		logger.String("host", cfg.RedisHost),
		logger.String("port", cfg.RedisPort))
	return st
}

// corsMiddleware allows any origin; the appliance UI is served from a
// different origin during development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
