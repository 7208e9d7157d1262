package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	echoapi "github.com/trezcool/wazazi/apps/api/echo"
	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/portal"
	"github.com/trezcool/wazazi/core/user"
	emailsvc "github.com/trezcool/wazazi/services/email"
	logsvc "github.com/trezcool/wazazi/services/logger"
	"github.com/trezcool/wazazi/services/notify"
	"github.com/trezcool/wazazi/storage/kv"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up logger
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	defer logger.Sync()

	// set up storage
	store, err := kv.Open(context.Background(), conf.Storage)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s storage: %v", conf.Storage.Engine, err), err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing storage: %v", err), err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger, conf.Debug)
	mailSvc := emailsvc.NewService(conf, logger)

	notifier := new(lazyNotifier)
	app, err := portal.New(context.Background(), store, portal.Options{
		Validate:    validate,
		Notifier:    notifier,
		MaxFileSize: conf.MaxFileSize,
		Seed:        true,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("initializing stores: %v", err), err)
	}
	notifier.MeetingNotifier = emailsvc.NewMeetingNotifier(conf, app.Users, mailSvc, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		App:        app,
		Hub:        notify.NewHub(logger),
		Mailer:     mailSvc,
		Validate:   validate,
		Translator: translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// lazyNotifier lets the meeting store be built before the notifier, which needs the user store.
type lazyNotifier struct {
	*emailsvc.MeetingNotifier
}
