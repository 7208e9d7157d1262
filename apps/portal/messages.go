package main

import (
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/dashboard"
	"github.com/trezcool/wazazi/core/messaging"
	"github.com/trezcool/wazazi/core/portal"
	"github.com/trezcool/wazazi/core/user"
)

func (c *client) conversationsCmd() *cobra.Command {
	return routed(portal.RouteMessages, &cobra.Command{
		Use:     "conversations [ID]",
		Aliases: []string{"convs"},
		Short:   "List your conversations, or show the messages of one",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			usr := c.currentUser()
			if len(args) == 0 {
				c.printConversations(usr, c.app.Messages.ForUser(usr.ID))
				return nil
			}

			conv, err := c.app.Messages.Get(args[0])
			if err != nil {
				return err
			}
			if !conv.HasParticipant(usr.ID) {
				return messaging.ErrNotFound
			}
			c.printMessages(conv)
			return nil
		},
	})
}

func (c *client) printConversations(usr user.User, convs []messaging.Conversation) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	c.fprintf(w, "ID\tTITLE\tWITH\tLAST MESSAGE\n")
	for _, conv := range convs {
		with := "-"
		if p, ok := dashboard.Participant(conv, usr); ok {
			with = p.Name
		}
		last := "-"
		if prev, ok := messaging.Preview(conv); ok {
			last = prev.SenderName + ": " + prev.Text
		}
		c.fprintf(w, "%s\t%s\t%s\t%s\n", conv.ID, conv.Title, with, last)
	}
	_ = w.Flush()
}

func (c *client) printMessages(conv messaging.Conversation) {
	c.printf("%s\n", conv.Title)
	for _, msg := range conv.Messages {
		sender := "Unknown"
		if p, ok := conv.Participant(msg.SenderID); ok {
			sender = p.Name
		}
		c.printf("[%s] %s: %s\n", msg.Timestamp.Local().Format("2006-01-02 15:04"), sender, msg.Text)
	}
}

func (c *client) sendCmd() *cobra.Command {
	var (
		to    []string
		title string
		group bool
	)
	cmd := &cobra.Command{
		Use:   "send [CONVERSATION_ID] TEXT...",
		Short: "Send a message",
		Long: `Send a message to an existing conversation, or start a new one with --to.
Starting a conversation with a single recipient reuses your existing one-to-one conversation,
unless --group is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usr := c.currentUser()

			if len(to) > 0 {
				data := messaging.NewConversation{RecipientIDs: to, Title: title, Text: strings.Join(args, " "), IsGroup: group}
				if err := c.app.Validate.Struct(data); err != nil {
					return err
				}
				recipients, err := c.recipients(data.RecipientIDs)
				if err != nil {
					return err
				}
				conv, err := c.app.Messages.StartConversation(cmd.Context(), usr, recipients, data.Title, data.Text, data.IsGroup)
				if err != nil {
					return err
				}
				c.printf("sent to %s\n", conv.ID)
				return nil
			}

			if len(args) < 2 {
				return errors.New("a conversation ID and a text are required, or --to to start a conversation")
			}
			data := messaging.NewMessage{Text: strings.Join(args[1:], " ")}
			if err := c.app.Validate.Struct(data); err != nil {
				return err
			}
			conv, err := c.app.Messages.Get(args[0])
			if err != nil {
				return err
			}
			if !conv.HasParticipant(usr.ID) {
				return errPermissionDenied
			}
			if _, err := c.app.Messages.SendMessage(cmd.Context(), conv.ID, usr.ID, core.CleanString(data.Text)); err != nil {
				return err
			}
			c.printf("sent to %s\n", conv.ID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&to, "to", nil, "recipient IDs, to start a conversation")
	cmd.Flags().StringVar(&title, "title", "", "title of the new conversation")
	cmd.Flags().BoolVar(&group, "group", false, "start a group conversation even with a single recipient")
	return routed(portal.RouteMessages, cmd)
}

func (c *client) recipients(ids []string) ([]user.User, error) {
	recipients := make([]user.User, 0, len(ids))
	for _, id := range ids {
		usr, err := c.app.Users.GetByID(id)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return nil, core.NewValidationError(err, core.FieldError{Field: "to", Error: "unknown recipient " + id})
			}
			return nil, err
		}
		recipients = append(recipients, usr)
	}
	return recipients, nil
}

func (c *client) joinCmd() *cobra.Command {
	return routed(portal.RouteMessages, &cobra.Command{
		Use:   "join CONVERSATION_ID",
		Short: "Join a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := c.app.Messages.Get(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Messages.JoinConversation(cmd.Context(), conv.ID, c.currentUser()); err != nil {
				return err
			}
			c.printf("joined %s\n", conv.Title)
			return nil
		},
	})
}
