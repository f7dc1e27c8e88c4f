package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"assistdesk/pkg/desktypes"
)

func newAssistantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistant",
		Short: "Manage assistants in the active project",
	}
	cmd.AddCommand(newAssistantListCmd())
	cmd.AddCommand(newAssistantCreateCmd())
	cmd.AddCommand(newAssistantRmCmd())
	return cmd
}

func newAssistantListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List assistants for the active project",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			if err := a.assistants.Load(); err != nil {
				return err
			}

			assistants := a.store.Assistants()
			if len(assistants) == 0 {
				fmt.Println("No assistants in the active project.")
				return nil
			}
			for _, as := range assistants {
				fmt.Printf("%-28s %-20s %-10s %4d messages  %6d tokens  EUR %.4f\n",
					as.ID, as.Name, as.Theme, as.MessageCount, as.TotalTokens, as.TotalCostEuros)
			}
			return nil
		},
	}
}

func newAssistantCreateCmd() *cobra.Command {
	var theme, file string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an assistant from a source document",
		Long: `Create an assistant from a source document (JSON, JSONL or TXT). The backend
converts and indexes the document and configures the hosted model; this can
take multiple seconds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			spec := desktypes.CreationSpec{Name: args[0], Theme: theme}
			assistant, err := a.assistants.Create(spec, file)
			if err != nil {
				return err
			}
			fmt.Printf("Assistant %q created (%s)\n", assistant.Name, assistant.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "Theme the assistant analyses")
	cmd.Flags().StringVar(&file, "file", "", "Source document path")
	_ = cmd.MarkFlagRequired("theme")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAssistantRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <assistant-id>",
		Short: "Delete an assistant and its conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			if err := a.assistants.Load(); err != nil {
				return err
			}
			if err := a.assistants.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("Assistant deleted")
			return nil
		},
	}
}
