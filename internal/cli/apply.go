package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuannvm/taskpilot/internal/fanout"
	"github.com/tuannvm/taskpilot/internal/models"
	"github.com/tuannvm/taskpilot/internal/report"
	"github.com/tuannvm/taskpilot/internal/stories"
	"github.com/tuannvm/taskpilot/internal/templates"
)

// ErrPartialFailure is returned by apply when some tasks could not be created
var ErrPartialFailure = errors.New("some tasks could not be created")

func newApplyCmd(a *app) *cobra.Command {
	var (
		tasksFile   string
		templateRef string
		exclude     []int
		concurrency int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "apply <sprint-url>",
		Short: "Create a set of tasks under every user story of a sprint",
		Long: `apply creates every task from --tasks or --template under every open user
story in the sprint. Each story/task pair is attempted exactly once; failures
are reported per row and do not stop the remaining pairs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (tasksFile == "") == (templateRef == "") {
				return fmt.Errorf("exactly one of --tasks or --template is required")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var drafts []models.TaskDraft
			if tasksFile != "" {
				loaded, err := LoadDrafts(tasksFile)
				if err != nil {
					return err
				}
				drafts = loaded
			} else {
				store, closeStore, err := a.templateStore()
				if err != nil {
					return err
				}
				defer closeStore()
				tmpl, err := templates.Find(ctx, store, templateRef)
				if err != nil {
					return err
				}
				drafts = tmpl.Tasks
			}
			if len(drafts) == 0 {
				return &models.ValidationError{Field: "tasks", Message: "no tasks to create"}
			}
			if err := models.ValidateDrafts(drafts); err != nil {
				return err
			}

			svc := a.storyService()
			sprint, err := svc.FetchFromSprintURL(ctx, args[0])
			if err != nil {
				return err
			}
			working := stories.Exclude(sprint.Stories, exclude)
			fmt.Fprint(out, report.Stories(fmt.Sprintf("%s (%s)", sprint.Iteration.Name, sprint.Iteration.Path), working))

			if dryRun {
				fmt.Fprintf(out, "Dry run: would create %d task(s) under %d user story(s).\n",
					len(drafts)*len(working), len(working))
				return nil
			}

			if concurrency < 1 {
				concurrency = a.cfg.FanOutConcurrency
			}
			engine := fanout.NewEngine(a.client, svc.Fetcher(), concurrency)
			results, err := engine.Run(ctx, fanout.Request{
				Stories:       working,
				Tasks:         drafts,
				AreaPath:      sprint.AreaPath,
				IterationPath: sprint.Iteration.Path,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(out, report.Results(results))

			if summary := fanout.Summarize(results); summary.Failed > 0 {
				return fmt.Errorf("%w: %d of %d failed", ErrPartialFailure, summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tasksFile, "tasks", "f", "", "YAML or JSON file with the tasks to create")
	cmd.Flags().StringVarP(&templateRef, "template", "t", "", "name or id of a saved template")
	cmd.Flags().IntSliceVar(&exclude, "exclude", nil, "user story ids to leave out")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "creation calls in flight at once (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the stories without creating anything")
	return cmd
}
