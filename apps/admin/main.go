package main

import (
	"context"
	"fmt"
	"os"

	"github.com/SaramshGautam/collaBoard/apps/shared"
	"github.com/SaramshGautam/collaBoard/core"
	identitysvc "github.com/SaramshGautam/collaBoard/services/identity"
	logsvc "github.com/SaramshGautam/collaBoard/services/logger"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewLogger("ADMIN", conf)
	ctx := context.Background()

	// set up document store; migrations are run by hand here
	storage, err := shared.OpenStorage(ctx, conf, false /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Database.Engine, err), err)
	}

	validate, _ := shared.NewValidator()
	core.ParseEmailTemplates(conf, logger)
	mailSvc := shared.NewMailService(conf, logger)
	svcs := shared.NewServices(
		conf, logger, storage.Store,
		identitysvc.NewStaticProvider(false /* devTokens */),
		nil, // no whiteboard commands
		mailSvc,
	)

	// start CLI
	cli := commandLine{
		usrSvc:       svcs.User,
		classroomSvc: svcs.Classroom,
		projectSvc:   svcs.Project,
		validate:     validate,
		in:           os.Stdin,
		out:          os.Stdout,
	}
	if storage.DB != nil {
		cli.db = storage.DB.DB
	}

	code := 0
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		code = 1
	}
	// sweepoverdue notices are delivered in the background
	if w, ok := mailSvc.(interface{ Wait() }); ok {
		w.Wait()
	}
	if err = storage.Close(); err != nil {
		logger.Error("Failed to close store", err)
	}
	os.Exit(code)
}
