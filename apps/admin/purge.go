package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/SaramshGautam/collaBoard/apps"
)

var isTerminalFunc = term.IsTerminal // mockable

// purgeClassroom deletes a classroom with its roster, projects and teams.
// Without -yes the course id has to be typed again on a terminal.
func (cli *commandLine) purgeClassroom(courseID string, yes bool) error {
	if !yes {
		if !isTerminalFunc(int(os.Stdin.Fd())) {
			return apps.NewArgumentError("purgeclassroom needs -yes when stdin is not a terminal")
		}
		fmt.Fprintf(cli.out, "This deletes %s and everything stored under it. Type the course id to confirm: ", courseID)
		line, err := bufio.NewReader(cli.in).ReadString('\n')
		if err != nil && line == "" {
			return errAborted
		}
		if strings.TrimSpace(line) != courseID {
			return errAborted
		}
	}

	n, err := cli.classroomSvc.Purge(context.Background(), courseID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Purged classroom %s: %d document(s) deleted.\n", courseID, n)
	return nil
}
