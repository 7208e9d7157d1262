package main

import (
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/meeting"
	"github.com/trezcool/wazazi/core/portal"
	"github.com/trezcool/wazazi/core/user"
)

func (c *client) meetingsCmd() *cobra.Command {
	return routed(portal.RouteMeetings, &cobra.Command{
		Use:   "meetings",
		Short: "List your meeting requests (all of them for admins)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			usr := c.currentUser()
			reqs := c.app.Meetings.ForUser(usr)
			if usr.IsAdmin() {
				reqs = c.app.Meetings.All()
			}

			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			c.fprintf(w, "ID\tPARENT\tTEACHER\tWHEN\tSTATUS\tREASON\n")
			for _, r := range reqs {
				c.fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.RequestedBy, r.TeacherName, r.PreferredDateTime, r.Status, r.Reason)
			}
			return w.Flush()
		},
	})
}

func (c *client) requestCmd() *cobra.Command {
	var data meeting.NewRequest
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request a meeting with a teacher (parents only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			usr := c.currentUser()
			if !usr.IsParent() {
				return errPermissionDenied
			}
			if err := c.app.Validate.Struct(data); err != nil {
				return err
			}

			teacher, err := c.app.Users.GetByID(data.TeacherID)
			if err != nil && !errors.Is(err, user.ErrNotFound) {
				return err
			}
			if err != nil || !teacher.IsTeacher() {
				return core.NewValidationError(nil, core.FieldError{Field: "teacher", Error: "not a teacher"})
			}

			req, err := c.app.Meetings.RequestMeeting(
				cmd.Context(),
				core.CleanString(data.Reason),
				core.CleanString(data.PreferredDateTime),
				usr,
				teacher.ID,
				teacher.Name,
			)
			if err != nil {
				return err
			}
			c.printf("requested meeting %s with %s (%s)\n", req.ID, req.TeacherName, req.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&data.TeacherID, "teacher", "", "teacher ID")
	cmd.Flags().StringVar(&data.Reason, "reason", "", "what the meeting is about")
	cmd.Flags().StringVar(&data.PreferredDateTime, "at", "", "preferred date and time, e.g. 2024-05-10T15:00")
	return routed(portal.RouteMeetings, cmd)
}

// statusCmd builds the command setting a meeting request status, named after the action: confirm or reject.
func (c *client) statusCmd(action, short string) *cobra.Command {
	status := meeting.StatusConfirmed
	if action == "reject" {
		status = meeting.StatusRejected
	}

	return routed(portal.RouteMeetings, &cobra.Command{
		Use:   action + " MEETING_ID",
		Short: short + " (teachers and admins)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usr := c.currentUser()
			if usr.IsParent() {
				return errPermissionDenied
			}
			req, err := c.app.Meetings.Get(args[0])
			if err != nil {
				return err
			}
			if usr.IsTeacher() && req.TeacherID != usr.ID {
				return errPermissionDenied
			}
			if err := c.app.Meetings.UpdateRequestStatus(cmd.Context(), req.ID, status); err != nil {
				return err
			}
			c.printf("meeting %s with %s is now %s\n", req.ID, req.RequestedBy, strings.ToLower(string(status)))
			return nil
		},
	})
}
