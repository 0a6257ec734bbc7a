package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gookit/gcli/v2"

	"github.com/streamshift/adrestreamer/internal/adlibrary"
	"github.com/streamshift/adrestreamer/internal/classifier"
	"github.com/streamshift/adrestreamer/internal/configs"
	"github.com/streamshift/adrestreamer/internal/httpapi"
	"github.com/streamshift/adrestreamer/internal/runtime"
	"github.com/streamshift/adrestreamer/internal/terminate"
	"github.com/streamshift/adrestreamer/internal/types"
	"github.com/streamshift/adrestreamer/utils/app"
	"github.com/streamshift/adrestreamer/utils/errorx"
	"github.com/streamshift/adrestreamer/utils/filex"
	"github.com/streamshift/adrestreamer/utils/slogx"
)

// serverOptions holds the flags bound by GOptsBinder, overlaid onto the
// loaded TOML config once parsed.
var serverOptions struct {
	Port           int
	SmoothBehindMS int
	SmoothAheadMS  int
	Quiet          bool
	NoRecordings   bool
}

func main() {
	runtime.Run(restreamer)
}

func restreamer() {
	cliApp := gcli.NewApp()
	cliApp.Name = types.AppName
	cliApp.Version = types.AppVersion
	if types.BuildTags != "" {
		cliApp.Version += " [" + types.BuildTags + "]"
	}
	cliApp.Description = types.AppDescription
	cliApp.GOptsBinder = func(gf *gcli.Flags) {
		gf.IntOpt(&serverOptions.Port, "port", "", 15190, "HTTP listen port for /play and /admin/ads")
		gf.IntOpt(&serverOptions.SmoothBehindMS, "smooth-behind", "", 500, "label smoother trailing window, in milliseconds")
		gf.IntOpt(&serverOptions.SmoothAheadMS, "smooth-ahead", "", 1500, "label smoother leading window, in milliseconds")
		gf.BoolOpt(&serverOptions.Quiet, "quiet", "q", false, "write logs to the log file only, not stderr")
		gf.BoolOpt(&serverOptions.NoRecordings, "no-recordings", "", false, "disable the diagnostic PCM recording tee")
	}

	gcli.AppHelpTemplate = fmt.Sprintf(types.AppHelpTemplate, types.AppName)

	serveCommand := &gcli.Command{
		Name:   "serve",
		UseFor: "Run the ad-replacement restreaming server",
		Func:   runServe,
	}
	cliApp.Add(serveCommand)
	cliApp.DefaultCommand(serveCommand.Name)

	cliApp.Run()
}

func runServe(_ *gcli.Command, _ []string) error {
	filex.LoadConfig()
	cfg := configs.AppConfig

	cfg.Server.ListenAddr = fmt.Sprintf(":%d", serverOptions.Port)
	cfg.Smoother.BehindMS = serverOptions.SmoothBehindMS
	cfg.Smoother.AheadMS = serverOptions.SmoothAheadMS
	cfg.Quiet = serverOptions.Quiet
	cfg.NoRecordings = serverOptions.NoRecordings

	slogx.Configure(logLevel(cfg.Log.Level), cfg.Log.JSON, cfg.Quiet)

	modelPath := cfg.Model.Path
	if !filepath.IsAbs(modelPath) {
		modelPath = filepath.Join(app.DataDir(), modelPath)
	}
	model, err := classifier.Load(modelPath)
	if err != nil {
		return fmt.Errorf("restreamer: load classifier model: %w", err)
	}
	slog.Info("classifier model loaded", "path", model.Path(), "bytes", model.Size())

	dbPath := cfg.Library.DBPath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(app.DataDir(), dbPath)
	}
	library, err := adlibrary.Open(dbPath)
	if err != nil {
		return fmt.Errorf("restreamer: open ad library: %w", err)
	}
	defer library.Close()

	provider := &adlibrary.LibraryProvider{Library: library, Cache: adlibrary.NewCache()}

	recordingDir := ""
	if !cfg.NoRecordings {
		recordingDir = filepath.Join(app.CacheDir(), "recordings")
	}

	mux := httpapi.NewMux(httpapi.Deps{
		Config:       cfg,
		Classifier:   model,
		Library:      library,
		Provider:     provider,
		RecordingDir: recordingDir,
	})

	ctx, stopSignals := terminate.Context()
	defer stopSignals()

	server := &http.Server{
		Addr:        cfg.Server.ListenAddr,
		Handler:     mux,
		ReadTimeout: types.AppHttpTimeout,
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	errorx.Go(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", slogx.Error(err))
		}
	})

	slog.Info("restreamer listening", "addr", cfg.Server.ListenAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("restreamer: serve: %w", err)
	}
	return nil
}

func logLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}
