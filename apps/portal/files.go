package main

import (
	"context"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/trezcool/wazazi/core/file"
	"github.com/trezcool/wazazi/core/portal"
)

// uploadTimeout bounds how long upload waits for the file to be read and stored.
var uploadTimeout = time.Minute

func (c *client) filesCmd() *cobra.Command {
	return routed(portal.RouteFiles, &cobra.Command{
		Use:   "files",
		Short: "List the shared files",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			c.fprintf(w, "ID\tNAME\tTYPE\tSIZE\tUPLOADED BY\n")
			for _, f := range c.app.Files.All() {
				s := file.Summarize(f)
				c.fprintf(w, "%s\t%s\t%s\t%d\t%s (%s)\n", s.ID, s.Name, s.Type, s.Size, s.UploadedBy, s.Role)
			}
			return w.Flush()
		},
	})
}

func (c *client) uploadCmd() *cobra.Command {
	return routed(portal.RouteFiles, &cobra.Command{
		Use:   "upload PATH",
		Short: "Share a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), uploadTimeout)
			defer cancel()

			f, err := c.app.Files.UploadAsync(file.PathSource(args[0]), c.currentUser()).Await(ctx)
			if err != nil {
				return err
			}
			c.printf("uploaded %s (%s)\n", f.Name, f.ID)
			return nil
		},
	})
}

func (c *client) rmCmd() *cobra.Command {
	return routed(portal.RouteFiles, &cobra.Command{
		Use:   "rm FILE_ID",
		Short: "Delete a file you uploaded (any file for admins)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.app.Files.Get(args[0])
			if err != nil {
				return err
			}
			usr := c.currentUser()
			if !usr.IsAdmin() && (f.UploadedBy != usr.Name || f.Role != usr.Role) {
				return errPermissionDenied
			}
			if err := c.app.Files.Delete(cmd.Context(), f.ID); err != nil {
				return err
			}
			c.printf("deleted %s\n", f.Name)
			return nil
		},
	})
}
