package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Converse with an assistant",
	}
	cmd.AddCommand(newChatSendCmd())
	cmd.AddCommand(newChatHistoryCmd())
	cmd.AddCommand(newChatClearCmd())
	cmd.AddCommand(newChatExportCmd())
	return cmd
}

func newChatSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <assistant-id> <message>",
		Short: "Send a message and print the reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			a.sessions.EnsureLoaded(args[0])
			reply, err := a.messaging.Send(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(reply.Content)
			return nil
		},
	}
}

func newChatHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <assistant-id>",
		Short: "Show the conversation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			a.sessions.EnsureLoaded(args[0])
			msgs := a.sessions.Get(args[0])
			if len(msgs) == 0 {
				fmt.Println("No messages.")
				return nil
			}
			for _, m := range msgs {
				fmt.Printf("[%s] %s: %s\n", m.Timestamp.Format("2006-01-02 15:04"), m.Role, m.Content)
			}
			return nil
		},
	}
}

func newChatClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <assistant-id>",
		Short: "Clear the conversation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			if err := a.sessions.Clear(args[0]); err != nil {
				return err
			}
			fmt.Println("History cleared")
			return nil
		},
	}
}

func newChatExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <assistant-id>",
		Short: "Export the conversation to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			a.sessions.EnsureLoaded(args[0])
			if err := a.sessions.ExportSession(args[0], out); err != nil {
				return err
			}
			fmt.Printf("Session exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "session.yaml", "Output file path")
	return cmd
}
