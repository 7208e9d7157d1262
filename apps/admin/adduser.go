package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core/user"
)

// addUser creates a user of any role. If the email is taken, the existing user's password is reset instead.
func (cli *commandLine) addUser(ctx context.Context, name, email, role, pwd string) error {
	if usr, err := cli.app.Users.GetByEmail(email); err == nil {
		if err := cli.app.Users.SetPassword(ctx, usr.ID, pwd); err != nil {
			return errors.Wrap(err, "resetting password")
		}
		_, _ = fmt.Fprintf(cli.out, "%s already exists: password updated\n", usr.Email)
		return nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	r, err := user.ParseRole(role)
	if err != nil {
		return err
	}
	usr, err := cli.app.Users.Register(ctx, user.NewUser{Name: name, Email: email, Password: pwd, Role: r})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "created %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}
