package main

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezcool/wazazi/core/portal"
	"github.com/trezcool/wazazi/core/user"
)

func (c *client) loginCmd() *cobra.Command {
	var email, role, pwd string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a Parent, Teacher or Admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := c.password(pwd)
			if err != nil {
				return err
			}
			usr, err := c.app.Session.Login(cmd.Context(), email, password, role)
			if err != nil {
				return err
			}
			c.printf("logged in as %s (%s)\n", usr.Name, usr.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", string(user.RoleParent), "Parent, Teacher or Admin")
	cmd.Flags().StringVar(&pwd, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return routed(portal.RouteLogin, cmd)
}

func (c *client) signupCmd() *cobra.Command {
	var nu user.NewUser
	var role, pwd string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a Parent or Teacher account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if nu.Password, err = c.password(pwd); err != nil {
				return err
			}
			nu.Role = user.Role(role)
			usr, err := c.app.Session.Signup(cmd.Context(), nu)
			if err != nil {
				return err
			}
			c.printf("welcome %s! logged in as %s\n", usr.Name, usr.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&nu.Name, "name", "", "full name")
	cmd.Flags().StringVar(&nu.Email, "email", "", "email")
	cmd.Flags().StringVar(&role, "role", string(user.RoleParent), "Parent or Teacher")
	cmd.Flags().StringVar(&pwd, "password", "", "password (prompted when omitted)")
	return routed(portal.RouteSignup, cmd)
}

func (c *client) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printf("logged out\n")
			return nil
		},
	}
}

func (c *client) whoamiCmd() *cobra.Command {
	return routed(portal.RouteDashboard, &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			usr := c.currentUser()
			c.printf("%s <%s> %s (%s)\n", usr.Name, usr.Email, usr.Role, usr.ID)
			return nil
		},
	})
}

func (c *client) usersCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Long: `List the teachers or the parents (--role), which anyone logged in may do.
Without --role, list every other user: admins only.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			var users []user.User
			switch role {
			case "":
				if err := c.guard(portal.RouteAdmin); err != nil {
					return err
				}
				users = c.app.Session.Users()
			default:
				r, err := user.ParseRole(role)
				if err != nil {
					return err
				}
				switch r {
				case user.RoleTeacher:
					users = c.app.Users.Teachers()
				case user.RoleParent:
					users = c.app.Users.Parents()
				case user.RoleAdmin:
					return errPermissionDenied
				}
			}
			c.printUsers(users)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only list Teachers or Parents")

	cmd.AddCommand(routed(portal.RouteAdmin, &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a user (admins only); what they wrote is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == c.currentUser().ID {
				return errPermissionDenied
			}
			usr, err := c.app.Users.GetByID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Session.DeleteUser(cmd.Context(), usr.ID); err != nil {
				return err
			}
			c.printf("deleted %s\n", usr.Email)
			return nil
		},
	}))
	return routed(portal.RouteMessages, cmd)
}

func (c *client) printUsers(users []user.User) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	c.fprintf(w, "ID\tNAME\tEMAIL\tROLE\n")
	for _, usr := range users {
		c.fprintf(w, "%s\t%s\t%s\t%s\n", usr.ID, usr.Name, usr.Email, usr.Role)
	}
	_ = w.Flush()
}
