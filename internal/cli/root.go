// Package cli is the verbai command line: tenant, content, lead and settings
// management against the configured persistence backend.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/matteuzdev/VerbAI-Studio/internal/app"
	"github.com/matteuzdev/VerbAI-Studio/internal/config"
	"github.com/matteuzdev/VerbAI-Studio/internal/logging"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	jsonOut    bool

	cfg     config.Config
	current *app.App
}

type Option func(*options)

// WithConfig skips loading configuration from file and environment.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func NewRootCommand(opts ...Option) *cobra.Command {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	rootCmd := &cobra.Command{
		Use:   "verbai",
		Short: "VerbAI Studio - multi-tenant website content store",
		Long: `verbai manages the tenants of a VerbAI Studio install and their
content, taxonomy, leads, page sections and branding. Data is kept in Redis,
in PostgreSQL or on a remote document service, as configured.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.initializeConfig()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return o.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&o.configFile, "config", "", "config file (default is ./verbai.yaml)")
	rootCmd.PersistentFlags().BoolVar(&o.jsonOut, "json", false, "print JSON instead of tables")

	rootCmd.AddCommand(
		newTenantsCommand(o),
		newContentCommand(o),
		newTermsCommand(o),
		newLeadsCommand(o),
		newSectionsCommand(o),
		newBrandCommand(o),
		newSeoCommand(o),
		newSiteCommand(o),
		newSitemapCommand(o),
		newLoginCommand(o),
		newLogoutCommand(o),
		newWhoamiCommand(o),
		newProfileCommand(o),
		newUsersCommand(o),
		newAssistCommand(o),
		newServeCommand(o),
	)
	return rootCmd
}

func (o *options) initializeConfig() error {
	if o.cfg == nil {
		cfg, err := config.Load(o.configFile)
		if err != nil {
			return err
		}
		o.cfg = cfg
	}
	logging.Setup(o.cfg.GetEnv(), o.cfg.GetLogLevel())
	return nil
}

// app opens the application on first use.
func (o *options) app(ctx context.Context) (*app.App, error) {
	if o.current != nil {
		return o.current, nil
	}
	a, err := app.New(ctx, o.cfg)
	if err != nil {
		return nil, err
	}
	o.current = a
	return a, nil
}

func (o *options) close() error {
	if o.current == nil {
		return nil
	}
	err := o.current.Close()
	o.current = nil
	return err
}
