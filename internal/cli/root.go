// Package cli implements the taskpilot command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tuannvm/taskpilot/internal/azdo"
	"github.com/tuannvm/taskpilot/internal/config"
	log "github.com/tuannvm/taskpilot/internal/logging"
	"github.com/tuannvm/taskpilot/internal/stories"
	"github.com/tuannvm/taskpilot/internal/templates"
)

// app carries what every subcommand needs once configuration has been loaded
type app struct {
	cfg    *config.Config
	client azdo.ClientInterface
}

func (a *app) storyService() *stories.Service {
	return stories.NewService(a.client, nil, a.cfg.FetchBatchSize)
}

func (a *app) templateStore() (templates.Store, func() error, error) {
	return templates.Open(a.cfg, a.client)
}

// NewRootCmd builds the full command tree
func NewRootCmd() *cobra.Command {
	a := &app{}
	var configFile string

	root := &cobra.Command{
		Use:   "taskpilot",
		Short: "Bulk-create tasks under every user story of a sprint",
		Long: `taskpilot reads a sprint board URL, finds the open user stories in that sprint
and creates the same set of tasks under each of them. Task sets can be kept as
templates, either as work items in the project or in a local database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// each command tree reads its own configuration
			vp := config.NewViper()
			if err := bindFlags(vp, cmd); err != nil {
				return err
			}
			if err := config.ReadConfigFile(vp, configFile); err != nil {
				return err
			}
			cfg := config.FromViper(vp)
			if err := log.Init(cfg.LogLevel); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.client = azdo.NewRemoteClient(cfg)
			log.Debugf("Connected to organization %s, project %s", cfg.Organization, cfg.Project)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			log.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is ./taskpilot.yaml)")
	flags.String("token", "", "personal access token")
	flags.String("org", "", "organization name or legacy *.visualstudio.com domain")
	flags.String("project", "", "project name")
	flags.String("base-url", "", "override the service base URL")
	flags.String("template-store", "", "template store: remote or local")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newStoriesCmd(a),
		newApplyCmd(a),
		newTemplatesCmd(a),
	)
	return root
}

// flagKeys maps persistent flags to configuration keys
var flagKeys = map[string]string{
	"token":          "token",
	"org":            "organization",
	"project":        "project",
	"base-url":       "base_url",
	"template-store": "template_store",
	"log-level":      "log_level",
}

func bindFlags(vp *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if err := vp.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Execute runs the command tree until ctx is done
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
