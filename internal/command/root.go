// Package command implements the prioritizer command line interface.
package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/di"
)

const AppName = "prioritizer"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

type globalOptions struct {
	configFile string
	verbose    bool
	jsonLog    bool
	wait       time.Duration
	set        map[string]string
}

func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Prioritize and triage an inbox of conversation previews",
		Long:          "Prioritizer labels conversation previews as high priority or spam, reorders the list and sends automated responses.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&opts.jsonLog, "json-log", false, "output logs in JSON format")
	flags.DurationVar(&opts.wait, "wait", 10*time.Second, "how long to wait for the conversation list")
	flags.StringToStringVar(&opts.set, "set", nil, "override a configuration key (key=value)")

	cmd.AddCommand(
		newImportCmd(opts),
		newClassifyCmd(opts),
		newListCmd(opts),
		newStateCmd(opts),
		newContactsCmd(opts),
		newTagsCmd(opts),
		newAutomationCmd(opts),
		newSendCmd(opts),
		newActionCmd(opts),
	)

	return cmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd(Version).ExecuteContext(ctx)
}

// invoke builds the CLI container and calls fn with its dependencies
func invoke(opts *globalOptions, fn interface{}) error {
	overrides := make(map[string]any, len(opts.set))
	for k, v := range opts.set {
		overrides[k] = v
	}

	container, err := di.BuildCLIContainer(di.CLIOptions{
		ConfigFile:  opts.configFile,
		Verbose:     opts.verbose,
		JSONLog:     opts.jsonLog,
		WaitTimeout: opts.wait,
		Overrides:   overrides,
	})
	if err != nil {
		return err
	}
	defer container.Invoke(release)

	if err := container.Invoke(fn); err != nil {
		return dig.RootCause(err)
	}
	return nil
}

// release closes the store and flushes the logger
func release(logger *zap.Logger, store core.Store) {
	if stopper, ok := store.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	_ = logger.Sync()
}
