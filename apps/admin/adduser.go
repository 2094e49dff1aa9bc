package main

import (
	"context"
	"fmt"

	"github.com/SaramshGautam/collaBoard/core/user"
)

// addUser updates or creates a user profile.
func (cli *commandLine) addUser(nu user.NewUser) error {
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.AddUser(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Saved %s (%s).\n", usr.Email, usr.Role)
	return nil
}
