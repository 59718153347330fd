package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/lv2extui/pkg/debug"
	"github.com/justyntemme/lv2extui/pkg/extui"
)

const defaultHostInterval = 50 * time.Millisecond

// options is the driver configuration. It is read from the --config file
// first; flags given on the command line override it.
type options struct {
	Manifest     string        `yaml:"manifest"`
	Plugin       string        `yaml:"plugin"`
	UIInterval   time.Duration `yaml:"ui_interval"`
	HostInterval time.Duration `yaml:"host_interval"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file"`
}

func defaultOptions() options {
	return options{
		UIInterval:   extui.DefaultRunInterval,
		HostInterval: defaultHostInterval,
		LogLevel:     "info",
	}
}

func bindFlags(cmd *cobra.Command) {
	def := defaultOptions()
	flags := cmd.PersistentFlags()
	flags.String("config", "", "YAML file with driver options")
	flags.String("manifest", "", "plugin metadata manifest (YAML)")
	flags.String("plugin", "", "plugin URI")
	flags.Duration("ui-interval", def.UIInterval, "pause between UI run calls")
	flags.Duration("host-interval", def.HostInterval, "pause between control message polls")
	flags.String("log-level", def.LogLevel, "debug, info, warn, error or off")
	flags.String("log-file", "", "write logs to this file instead of stderr")
}

// loadOptions merges the config file and the flags of cmd.
func loadOptions(cmd *cobra.Command) (options, error) {
	opts := defaultOptions()
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return opts, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return opts, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return opts, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	stringFlags := map[string]*string{
		"manifest":  &opts.Manifest,
		"plugin":    &opts.Plugin,
		"log-level": &opts.LogLevel,
		"log-file":  &opts.LogFile,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetString(name); err != nil {
				return opts, err
			}
		}
	}
	durationFlags := map[string]*time.Duration{
		"ui-interval":   &opts.UIInterval,
		"host-interval": &opts.HostInterval,
	}
	for name, dst := range durationFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetDuration(name); err != nil {
				return opts, err
			}
		}
	}

	return opts, opts.validate()
}

func (o options) validate() error {
	if o.Manifest == "" {
		return fmt.Errorf("no manifest given (--manifest or manifest in --config)")
	}
	if o.Plugin == "" {
		return fmt.Errorf("no plugin given (--plugin or plugin in --config)")
	}
	if o.UIInterval <= 0 || o.HostInterval <= 0 {
		return fmt.Errorf("intervals must be positive")
	}
	if _, err := debug.ParseLevel(o.LogLevel); err != nil {
		return err
	}
	return nil
}

// logger builds the driver's logger and points the process default logger,
// used by the UI callback path and the host helpers, at the same output and
// level. The returned function restores the default logger and closes the
// log file.
func (o options) logger(cmd *cobra.Command) (*debug.Logger, func(), error) {
	level, err := debug.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	logger := debug.New(cmd.ErrOrStderr(), "lv2ui-host", debug.DefaultFlags)
	if o.LogFile != "" {
		if logger, err = debug.NewFileLogger(o.LogFile, "lv2ui-host", debug.DefaultFlags); err != nil {
			return nil, nil, err
		}
	}
	logger.SetLevel(level)

	prevOutput, prevLevel := debug.Default().Output(), debug.Default().Level()
	debug.SetOutput(logger.Output())
	debug.SetLevel(level)

	closeLog := func() {
		debug.SetOutput(prevOutput)
		debug.SetLevel(prevLevel)
		if err := logger.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to close log file: %v\n", err)
		}
	}
	return logger, closeLog, nil
}
