package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuannvm/taskpilot/internal/report"
)

func newStoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stories <sprint-url>",
		Short: "List the open user stories of a sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.storyService().FetchFromSprintURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			title := fmt.Sprintf("%s (%s)", result.Iteration.Name, result.Iteration.Path)
			fmt.Fprint(cmd.OutOrStdout(), report.Stories(title, result.Stories))
			return nil
		},
	}
}
