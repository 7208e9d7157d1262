package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/portal"
	"github.com/trezcool/wazazi/core/user"
	logsvc "github.com/trezcool/wazazi/services/logger"
	"github.com/trezcool/wazazi/storage/kv"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(false)

	// set up storage
	ctx := context.Background()
	store, err := kv.Open(ctx, conf.Storage)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s storage: %v", conf.Storage.Engine, err), err)
	}

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	app, err := portal.New(ctx, store, portal.Options{Validate: validate, MaxFileSize: conf.MaxFileSize})
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading stores: %v", err), err)
	}

	// start CLI
	cli := commandLine{app: app, out: os.Stdout}
	err = cli.run(os.Args)
	_ = store.Close()
	if err != nil {
		if !errors.Is(err, errHelp) {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
