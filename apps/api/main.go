package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	echoapi "github.com/SaramshGautam/collaBoard/apps/api/echo"
	"github.com/SaramshGautam/collaBoard/apps/shared"
	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/project"
	logsvc "github.com/SaramshGautam/collaBoard/services/logger"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	logger := logsvc.NewLogger("API", conf)
	storeLogger := logsvc.NewLogger("STORE", conf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up document store
	storage, err := shared.OpenStorage(ctx, conf, true /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Database.Engine, err), err)
	}
	defer func() {
		if err = storage.Close(); err != nil {
			storeLogger.Error("Failed to close", err)
		}
	}()

	identity, err := shared.NewIdentityProvider(ctx, conf, storage)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up identity provider: %v", err), err)
	}

	overlay, closeOverlay, err := shared.NewOverlay(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up overlay: %v", err), err)
	}
	defer func() {
		if err = closeOverlay(); err != nil {
			logger.Error("Failed to close overlay", err)
		}
	}()

	// set up services
	mailSvc := shared.NewMailService(conf, logger)
	svcs := shared.NewServices(conf, logger, storage.Store, identity, overlay, mailSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := shared.NewValidator()
	core.ParseEmailTemplates(conf, logger)

	go sweepOverdue(ctx, conf.Server.OverdueSweep, svcs.Project, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validate,
			Translator:    translator,
			Denylist:      overlay,
			UserSvc:       svcs.User,
			ClassroomSvc:  svcs.Classroom,
			ProjectSvc:    svcs.Project,
			TeamSvc:       svcs.Team,
			WhiteboardSvc: svcs.Whiteboard,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		cancel()

		// give outstanding requests a deadline for completion
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancelShutdown()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(shutdownCtx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// sweepOverdue flags past due projects every interval until ctx is done.
func sweepOverdue(ctx context.Context, interval time.Duration, svc project.Service, logger core.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.SweepOverdue(ctx)
			if err != nil {
				logger.Error(fmt.Sprintf("sweeping overdue projects: %v", err), err)
				continue
			}
			if n > 0 {
				logger.Info(fmt.Sprintf("%d project(s) flagged overdue", n))
			}
		}
	}
}
