// SPDX-License-Identifier: MIT
package cmd

import (
	"time"

	"sigbench/internal/config"
	"sigbench/pkg/build"

	"github.com/spf13/cobra"
)

// Commands selected by ParseArgs.
const (
	CommandRun    = "run"
	CommandList   = "list"
	CommandParams = "params"
	CommandBrowse = "browse"
)

// Options holds the parsed command line. Command is empty when nothing
// should run, e.g. after --help or --version.
type Options struct {
	Command    string
	ConfigPath string
	Verbose    bool

	// list, browse and run
	Task string

	// params
	MethodID string

	// run
	Methods     []string
	Signals     []string
	Workers     int
	Timeout     time.Duration
	OutputDir   string
	VerifyInput bool

	changed map[string]bool
}

// ParseArgs parses args (without the program name).
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildInfo()
	options := &Options{changed: make(map[string]bool)}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         build.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&options.ConfigPath, "config", "c", "",
		"Path to a YAML config file (default: "+config.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show verbose output")

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run methods over signals, sweeping their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandRun
			for _, name := range []string{"method", "task", "signal", "workers", "timeout", "output-dir", "verify-input"} {
				options.changed[name] = cmd.Flags().Changed(name)
			}
			return nil
		},
	}
	runCmd.Flags().StringSliceVarP(&options.Methods, "method", "m", nil,
		"Method IDs to run (repeatable or comma-separated). Use 'list' to see them.")
	runCmd.Flags().StringVarP(&options.Task, "task", "t", "",
		"Run every method of a task: denoising or detection")
	runCmd.Flags().StringSliceVarP(&options.Signals, "signal", "s", nil,
		"WAV files to process instead of the configured signals")
	runCmd.Flags().IntVarP(&options.Workers, "workers", "w", config.DefaultWorkers,
		"Concurrent invocations (0 for one per CPU)")
	runCmd.Flags().DurationVar(&options.Timeout, "timeout", config.DefaultTimeout,
		"Per-invocation time limit (0 for none)")
	runCmd.Flags().StringVarP(&options.OutputDir, "output-dir", "o", "",
		"Write denoised signals as WAV files into this directory")
	runCmd.Flags().BoolVar(&options.VerifyInput, "verify-input", false,
		"Fail methods that modify their input signal")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered methods",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandList
		},
	}
	listCmd.Flags().StringVarP(&options.Task, "task", "t", "",
		"Only list methods of this task")
	rootCmd.AddCommand(listCmd)

	// Params command
	paramsCmd := &cobra.Command{
		Use:   "params <method-id>",
		Short: "Show the parameter sets a method is swept over",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandParams
			options.MethodID = args[0]
		},
	}
	rootCmd.AddCommand(paramsCmd)

	// Browse command
	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse methods and their parameters interactively",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandBrowse
		},
	}
	browseCmd.Flags().StringVarP(&options.Task, "task", "t", "",
		"Only show methods of this task")
	rootCmd.AddCommand(browseCmd)

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

// Apply overrides cfg with the run flags that were set explicitly.
func (o *Options) Apply(cfg *config.Config) {
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	if o.changed["method"] {
		cfg.Run.Methods = o.Methods
	}
	if o.changed["task"] {
		cfg.Run.Task = o.Task
	}
	if o.changed["signal"] {
		cfg.Signals = config.SignalsFromPaths(o.Signals)
	}
	if o.changed["workers"] {
		cfg.Run.Workers = o.Workers
	}
	if o.changed["timeout"] {
		cfg.Run.Timeout = o.Timeout
	}
	if o.changed["output-dir"] {
		cfg.Run.OutputDir = o.OutputDir
	}
	if o.changed["verify-input"] {
		cfg.Run.VerifyInput = o.VerifyInput
	}
}
