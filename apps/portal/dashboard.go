package main

import (
	"github.com/spf13/cobra"

	"github.com/trezcool/wazazi/core/dashboard"
	"github.com/trezcool/wazazi/core/messaging"
	"github.com/trezcool/wazazi/core/portal"
)

func (c *client) dashboardCmd() *cobra.Command {
	return routed(portal.RouteDashboard, &cobra.Command{
		Use:   "dashboard",
		Short: "Show what needs your attention",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			usr := c.currentUser()
			sum, err := c.app.Dashboard()
			if err != nil {
				return err
			}

			c.printf("Welcome back, %s\n\n", usr.Name)
			c.printf("Messages: %d\n", sum.UnreadMessages)
			for _, conv := range sum.RecentConversations {
				name := conv.Title
				if p, ok := dashboard.Participant(conv, usr); ok {
					name = p.Name
				}
				if prev, ok := messaging.Preview(conv); ok {
					c.printf("  %s: %s\n", name, prev.Text)
				}
			}

			c.printf("Meetings: %d upcoming, %d pending\n", sum.UpcomingCount, sum.PendingMeetings)
			for _, m := range sum.UpcomingMeetings {
				c.printf("  %s with %s (%s)\n", m.PreferredDateTime, dashboard.MeetingParticipantName(m, usr), m.Status)
			}

			c.printf("Files: %d\n", sum.FilesCount)
			for _, f := range sum.RecentFiles {
				c.printf("  %s by %s\n", f.Name, f.UploadedBy)
			}
			return nil
		},
	})
}
