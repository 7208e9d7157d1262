package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/portal"
	"github.com/trezcool/wazazi/core/user"
)

var readPasswordFunc = term.ReadPassword // mockable

// routeAnnotation names the portal.Route a command belongs to.
const routeAnnotation = "route"

type client struct {
	app        *portal.App
	out        io.Writer
	translator ut.Translator
	// open builds the app on first use. Unused when app is set.
	open func(ctx context.Context) (*portal.App, error)
}

func newRootCmd(c *client) *cobra.Command {
	root := &cobra.Command{
		Use:   "portal",
		Short: "Parent-teacher portal client",
		Long: `Talk to teachers and parents, schedule meetings and share files.

Log in first; the session is kept until you log out.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.prepare,
	}
	root.SetOut(c.out)
	root.SetErr(c.out)

	root.AddCommand(
		c.loginCmd(),
		c.signupCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.usersCmd(),
		c.conversationsCmd(),
		c.sendCmd(),
		c.joinCmd(),
		c.meetingsCmd(),
		c.requestCmd(),
		c.statusCmd("confirm", "Confirm a meeting request"),
		c.statusCmd("reject", "Reject a meeting request"),
		c.filesCmd(),
		c.uploadCmd(),
		c.rmCmd(),
		c.dashboardCmd(),
	)
	return root
}

// run executes the command line and prints any failure in a human friendly way.
func (c *client) run(args []string) error {
	root := newRootCmd(c)
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		_, _ = fmt.Fprintln(c.out, "error:", c.describe(err))
	}
	return err
}

// prepare opens the app and enforces the route guard of the command about to run.
func (c *client) prepare(cmd *cobra.Command, _ []string) error {
	if c.app == nil {
		app, err := c.open(cmd.Context())
		if err != nil {
			return err
		}
		c.app = app
	}

	route, ok := cmd.Annotations[routeAnnotation]
	if !ok {
		return nil
	}
	return c.guard(portal.Route(route))
}

func (c *client) guard(route portal.Route) error {
	var current *user.User
	if usr, ok := c.app.Session.Current(); ok {
		current = &usr
	}
	if allowed, redirect := portal.Guard(route, current); !allowed {
		if redirect == portal.RouteLogin {
			return portal.ErrNoSession
		}
		return errPermissionDenied
	}
	return nil
}

var errPermissionDenied = errors.New("permission denied")

func (c *client) currentUser() user.User {
	usr, _ := c.app.Session.Current() // guarded
	return usr
}

func (c *client) describe(err error) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && c.translator != nil {
		msgs := make([]string, 0, len(vErrs))
		for _, vErr := range vErrs {
			msgs = append(msgs, vErr.Field()+": "+vErr.Translate(c.translator))
		}
		return strings.Join(msgs, "; ")
	}

	var valErr *core.ValidationError
	if errors.As(err, &valErr) && len(valErr.Fields) > 0 {
		msgs := make([]string, 0, len(valErr.Fields))
		for _, fErr := range valErr.Fields {
			msgs = append(msgs, fErr.Field+": "+fErr.Error)
		}
		sort.Strings(msgs)
		return strings.Join(msgs, "; ")
	}

	if errors.Is(err, portal.ErrNoSession) {
		return "not logged in: run `portal login` first"
	}
	return err.Error()
}

func (c *client) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// password returns the flag value, or prompts for it.
func (c *client) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	c.printf("Password: ")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	c.printf("\n")
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func routed(route portal.Route, cmd *cobra.Command) *cobra.Command {
	cmd.Annotations = map[string]string{routeAnnotation: string(route)}
	return cmd
}

func (c *client) fprintf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
