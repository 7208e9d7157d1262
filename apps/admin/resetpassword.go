package main

import "context"

func (cli *commandLine) resetPassword(ctx context.Context, key, pwd string) error {
	return cli.app.Users.SetPassword(ctx, key, pwd)
}
