package main

import (
	"github.com/spf13/cobra"

	"github.com/far7tna/portal/internal/config"
	"github.com/far7tna/portal/internal/logging"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	envFiles []string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "far7tna",
		Short:        "Far7tna marketplace client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.envFiles)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			logging.Setup(cfg.GetEnv(), cfg.GetLogLevel(), cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "env files to load instead of .env")

	cmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newCategoriesCmd(opts),
		newServicesCmd(opts),
		newPortalCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func loadConfig(files []string) (config.Config, error) {
	if len(files) == 0 {
		return config.New(), nil
	}
	return config.Load(files...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("far7tna " + version)
		},
	}
}
