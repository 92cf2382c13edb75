package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuannvm/taskpilot/internal/report"
	"github.com/tuannvm/taskpilot/internal/templates"
)

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template"},
		Short:   "Manage saved task templates",
	}
	cmd.AddCommand(
		newTemplatesListCmd(a),
		newTemplatesSaveCmd(a),
		newTemplatesDeleteCmd(a),
		newTemplatesClearCmd(a),
	)
	return cmd
}

func newTemplatesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := a.templateStore()
			if err != nil {
				return err
			}
			defer closeStore()

			all, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Templates(all))
			return nil
		},
	}
}

func newTemplatesSaveCmd(a *app) *cobra.Command {
	var tasksFile string
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the tasks in a file as a named template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := LoadDrafts(tasksFile)
			if err != nil {
				return err
			}
			store, closeStore, err := a.templateStore()
			if err != nil {
				return err
			}
			defer closeStore()

			saved, err := store.Save(cmd.Context(), args[0], drafts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved template %q with %d task(s), id %s\n", saved.Name, len(saved.Tasks), saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&tasksFile, "tasks", "f", "", "YAML or JSON file with the template tasks")
	_ = cmd.MarkFlagRequired("tasks")
	return cmd
}

func newTemplatesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.templateStore()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", args[0])
			return nil
		},
	}
}

func newTemplatesClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all templates without --yes")
			}
			store, closeStore, err := a.templateStore()
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := templates.ClearAll(cmd.Context(), store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d template(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all templates")
	return cmd
}
