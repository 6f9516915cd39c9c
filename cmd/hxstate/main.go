package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hxstate/internal/config"
	"github.com/vango-dev/hxstate/internal/errors"
	"github.com/vango-dev/hxstate/pkg/binding"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	engine     string
	policy     string
	noColor    bool
}

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	flags  globalFlags
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, errors.FromError(err, "H199").Format())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "hxstate",
		Short: "Attribute-driven reactive bindings for HTML",
		Long: `hxstate runs hx-state, hx-bind and hx-effect attributes against an
HTML document on the server.

  hx-state                          the element owns a state store
  hx-bind="innerText=count:Number"  keep a property in sync with state
  hx-effect="style.color = ..."     rerun an expression when state changes`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "Config file (default: hxstate.json or hxstate.yaml in the working directory)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "Log format: text or json")
	pf.StringVarP(&a.flags.engine, "engine", "e", "", "Effect expression engine: expr, cel or js")
	pf.StringVar(&a.flags.policy, "policy", "", "What setup does with a failing attribute: abort or skip")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		checkCmd(a),
		renderCmd(a),
		serveCmd(a),
		versionCmd(),
	)
	return rootCmd
}

// init loads the config, applies flag overrides and installs the logger.
func (a *app) init(stderr io.Writer) error {
	if a.flags.noColor {
		errors.DisableColors()
	}

	var (
		cfg *config.Config
		err error
	)
	if a.flags.configPath != "" {
		cfg, err = config.LoadFile(a.flags.configPath)
	} else {
		cfg, err = config.LoadOptional(".")
	}
	if err != nil {
		return err
	}

	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.Log.Format = a.flags.logFormat
	}
	if a.flags.engine != "" {
		cfg.Effects.Engine = a.flags.engine
	}
	if a.flags.policy != "" {
		cfg.Effects.Policy = a.flags.policy
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(stderr, cfg.Log)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(w io.Writer, lc config.LogConfig) *slog.Logger {
	level, _ := config.ParseLevel(lc.Level)
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// bindingOptions builds registrar options from the config.
func (a *app) bindingOptions() (binding.Options, error) {
	eng, err := a.cfg.Engine(a.logger.With("component", "expression"))
	if err != nil {
		return binding.Options{}, err
	}
	return binding.Options{
		Attrs:  a.cfg.Attrs,
		Engine: eng,
		Policy: binding.Policy(a.cfg.Effects.Policy),
		Logger: a.logger.With("component", "binding"),
	}, nil
}

func errArgs(detail string) error {
	return errors.New("H141").WithDetail(detail)
}
