package main

import (
	"context"
	"fmt"
	"text/tabwriter"
)

// deleteUser removes the account only. Nothing else references users by foreign key.
func (cli *commandLine) deleteUser(ctx context.Context, key string) error {
	usr, err := cli.app.Users.GetByIDOrEmail(key)
	if err != nil {
		return err
	}
	if err := cli.app.Users.Delete(ctx, usr.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "deleted %s\n", usr.Email)
	return nil
}

func (cli *commandLine) listUsers() error {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	for _, usr := range cli.app.Users.QueryAll() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", usr.ID, usr.Name, usr.Email, usr.Role)
	}
	return w.Flush()
}

func (cli *commandLine) seed(ctx context.Context) error {
	users, convs, err := cli.app.Seed(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "seeded %d users and %d conversations\n", users, convs)
	return nil
}
