package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/wazazi/core/portal"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	app *portal.App
	out io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL [-role ROLE] - create a user, or reset the password of an existing one")
	_, _ = fmt.Fprintln(cli.out, "  resetpassword -user ID|EMAIL - reset user's password")
	_, _ = fmt.Fprintln(cli.out, "  deleteuser -user ID|EMAIL - delete a user (their messages, meetings and files are kept)")
	_, _ = fmt.Fprintln(cli.out, "  listusers - list all users")
	_, _ = fmt.Fprintln(cli.out, "  seed - load the demo users and conversations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", "Admin", "Parent, Teacher or Admin.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUser := resetPasswordCmd.String("user", "", "The user's ID or email. The password will be prompted next.")

	deleteUserCmd := flag.NewFlagSet("deleteuser", flag.ContinueOnError)
	deleteUserKey := deleteUserCmd.String("user", "", "The user's ID or email.")

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, deleteUserCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, *addUserName, *addUserEmail, *addUserRole, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUser == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordUser, pwd)

	case "deleteuser":
		if err := deleteUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteUserKey == "" {
			deleteUserCmd.Usage()
			return errHelp
		}
		return cli.deleteUser(ctx, *deleteUserKey)

	case "listusers":
		return cli.listUsers()

	case "seed":
		return cli.seed(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) readPassword() (string, error) {
	_, _ = fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}
