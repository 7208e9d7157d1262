// Command portal is the local client of the portal: it works on the stores of the configured
// storage engine (a directory of JSON files by default) and keeps its session there between runs.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

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
	logger := logsvc.NewRollbarLogger(zl.Named("portal"), conf)
	logger.Enable(false)
	defer logger.Sync()

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	var closeStore func() error
	c := &client{
		out:        os.Stdout,
		translator: translator,
		open: func(ctx context.Context) (*portal.App, error) {
			store, err := kv.Open(ctx, conf.Storage)
			if err != nil {
				return nil, fmt.Errorf("opening %s storage: %w", conf.Storage.Engine, err)
			}
			closeStore = store.Close
			return portal.New(ctx, store, portal.Options{
				Validate:    validate,
				MaxFileSize: conf.MaxFileSize,
				Seed:        true,
			})
		},
	}

	err = c.run(os.Args[1:])
	if closeStore != nil {
		_ = closeStore()
	}
	if err != nil {
		logger.Debug(fmt.Sprintf("command failed: %v", err), err)
		os.Exit(1)
	}
}
