package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) sweepOverdue() error {
	n, err := cli.projectSvc.SweepOverdue(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d project(s) flagged overdue.\n", n)
	return nil
}
