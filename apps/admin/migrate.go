package main

import (
	"github.com/SaramshGautam/collaBoard/apps"
	"github.com/SaramshGautam/collaBoard/storage/docstore/pgstore"
)

var migrateFunc = pgstore.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return apps.NewArgumentError("migrations only apply to the postgres engine")
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return migrateFunc(cli.db, args[0], arguments...)
}
