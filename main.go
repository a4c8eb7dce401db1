package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pstuifzand/toodledo-to-todoist/internal/app"
	"github.com/pstuifzand/toodledo-to-todoist/internal/config"
	"github.com/pstuifzand/toodledo-to-todoist/internal/export"
)

// options holds the flags shared by all commands
type options struct {
	configPath       string
	folderFilter     string
	taskLimit        int
	includeCompleted bool
	outputDir        string
	dueDateFormat    string
	logLevel         string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "toodledo-export <backup.xml>",
		Short: "Convert a Toodledo XML backup into Todoist import files",
		Long: `Reads a Toodledo XML backup and writes:

  __text_tasks.txt               an indented dump of every folder
  __<folder>[00000].txt          Todoist import files, one per folder,
  __<folder>__part_N_[00000].txt split when a folder exceeds the task limit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// usage is only useful for argument errors
			cmd.SilenceUsage = true

			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return app.NewApp(cfg, logger).Run(args[0])
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/toodledo-export/config.toml)")
	flags.StringVar(&opts.folderFilter, "folder-filter", "", "only convert folders whose name starts with this prefix")
	flags.IntVar(&opts.taskLimit, "limit", export.DefaultTaskLimit, "maximum number of tasks per Todoist file")
	flags.BoolVar(&opts.includeCompleted, "include-completed", false, "include completed tasks")
	flags.StringVar(&opts.outputDir, "output-dir", ".", "directory to write the output files to")
	flags.StringVar(&opts.dueDateFormat, "due-date-format", "", "strftime format for due dates, e.g. %d %b %Y")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(foldersCmd(opts))
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

// load reads the config file and applies the flags that were set explicitly
func (o *options) load(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadFromFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("folder-filter") {
		cfg.FolderFilter = o.folderFilter
	}
	if flags.Changed("limit") {
		cfg.TaskLimit = o.taskLimit
	}
	if flags.Changed("include-completed") {
		cfg.IncludeCompleted = o.includeCompleted
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if flags.Changed("due-date-format") {
		cfg.DueDateFormat = o.dueDateFormat
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:  cfg.Level(),
		Prefix: "toodledo",
	})
	return cfg, logger, nil
}

func foldersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "folders <backup.xml> [query]",
		Short: "List the folders of a backup, optionally fuzzy matched against query",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			library, err := app.NewApp(cfg, logger).Load(args[0])
			if err != nil {
				return err
			}

			query := ""
			if len(args) > 1 {
				query = args[1]
			}
			return app.WriteFolders(cmd.OutOrStdout(), app.SummarizeFolders(library, query))
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			} else {
				var err error
				if path, err = config.GetConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})

	return cmd
}
