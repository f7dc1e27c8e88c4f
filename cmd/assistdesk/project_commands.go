package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage upstream credential projects",
	}
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectAddCmd())
	cmd.AddCommand(newProjectUseCmd())
	cmd.AddCommand(newProjectRmCmd())
	return cmd
}

func newProjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured projects",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			projects := a.credentials.ListProjects()
			if len(projects) == 0 {
				fmt.Println("No projects configured. Add one with: assistdesk project add")
				return nil
			}

			activeID := a.store.ActiveProjectID()
			for _, p := range projects {
				marker := " "
				if p.ID == activeID {
					marker = "*"
				}
				label := ""
				if p.IsDefault {
					label = " (default)"
				}
				fmt.Printf("%s %-24s %-12s %d models  key %s%s\n",
					marker, p.Name, p.ID, p.ModelCount, p.MaskedKey(), label)
			}
			return nil
		},
	}
}

func newProjectAddCmd() *cobra.Command {
	var apiKey string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project after validating its credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			project, err := a.credentials.AddProject(args[0], apiKey)
			if err != nil {
				return err
			}
			fmt.Printf("Project %q added (%d models available)\n", project.Name, project.ModelCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "key", "", "Upstream API key (sk-...)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newProjectUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <project-id>",
		Short: "Switch the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			project, err := a.credentials.SwitchActive(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Switched to project %q\n", project.Name)
			return nil
		},
	}
}

func newProjectRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <project-id>",
		Short: "Delete a non-default project",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			if err := a.credentials.DeleteProject(args[0]); err != nil {
				return err
			}
			fmt.Println("Project deleted")
			return nil
		},
	}
}
