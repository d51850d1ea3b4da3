package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func NewMessagesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Talk to buyers and sellers",
	}
	cmd.AddCommand(newMessagesSendCommand(rootOpts))
	cmd.AddCommand(newMessagesThreadCommand(rootOpts))
	cmd.AddCommand(newMessagesReadCommand(rootOpts))
	return cmd
}

func newMessagesSendCommand(rootOpts *RootOptions) *cobra.Command {
	var productID string

	cmd := &cobra.Command{
		Use:     "send <user-id> <text...>",
		Short:   "Send a message",
		Example: `  marketctl messages send 65f0aa11 "Is the lamp still available?" --product 65f0c0ffee`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args[1:], " ")
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				return app.Messages.SendMessage(ctx, args[0], content, productID)
			})
		},
	}
	cmd.Flags().StringVar(&productID, "product", "", "listing the message is about")
	return cmd
}

func newMessagesThreadCommand(rootOpts *RootOptions) *cobra.Command {
	var markRead bool

	cmd := &cobra.Command{
		Use:   "thread <user-id>",
		Short: "Show the conversation with one user, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				me, err := requireSession(app)
				if err != nil {
					return err
				}
				if err := app.Messages.FetchMessages(ctx); err != nil {
					return err
				}
				msgs := app.Messages.Thread(args[0])
				if markRead {
					if err := app.Messages.MarkAsRead(ctx, args[0]); err != nil {
						return err
					}
				}
				return rootOpts.Output().Print(msgs, func(w io.Writer) { printThread(w, me, msgs) })
			})
		},
	}
	cmd.Flags().BoolVar(&markRead, "mark-read", true, "mark the other user's messages as read")
	return cmd
}

func newMessagesReadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <user-id>",
		Short: "Mark every message from a user as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				return app.Messages.MarkAsRead(ctx, args[0])
			})
		},
	}
}

func NewConversationsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"inbox"},
		Short:   "List conversations, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				if _, err := requireSession(app); err != nil {
					return err
				}
				if err := app.Messages.FetchMessages(ctx); err != nil {
					return err
				}
				convs := app.Messages.Conversations()
				return rootOpts.Output().Print(convs, func(w io.Writer) { printConversations(w, convs) })
			})
		},
	}
}
