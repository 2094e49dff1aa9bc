package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/SaramshGautam/collaBoard/core/classroom"
	"github.com/SaramshGautam/collaBoard/core/project"
	"github.com/SaramshGautam/collaBoard/core/user"
)

var (
	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted")
)

type commandLine struct {
	db           *sql.DB // postgres engine only
	usrSvc       user.Service
	classroomSvc classroom.Service
	projectSvc   project.Service
	validate     *validator.Validate
	in           io.Reader
	out          io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME -role teacher|student [-lsuid ID] - create or update a user profile")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a goose command against the postgres store")
	fmt.Fprintln(cli.out, "  sweepoverdue - flag every project past its due date")
	fmt.Fprintln(cli.out, "  purgeclassroom -course COURSE_ID [-yes] - delete a classroom and everything under it")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's display name.")
	addUserRole := addUserCmd.String("role", "", "teacher or student.")
	addUserLSUID := addUserCmd.String("lsuid", "", "The student's LSU id (optional).")

	purgeCmd := flag.NewFlagSet("purgeclassroom", flag.ExitOnError)
	purgeCourse := purgeCmd.String("course", "", "The course id of the classroom.")
	purgeYes := purgeCmd.Bool("yes", false, "Skip the confirmation prompt.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserRole == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(user.NewUser{
			Email: *addUserEmail,
			Name:  *addUserName,
			Role:  *addUserRole,
			LSUID: *addUserLSUID,
		})
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "sweepoverdue":
		return cli.sweepOverdue()
	case "purgeclassroom":
		if err := purgeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *purgeCourse == "" {
			purgeCmd.Usage()
			return errHelp
		}
		return cli.purgeClassroom(*purgeCourse, *purgeYes)
	default:
		cli.printUsage()
		return errHelp
	}
}
