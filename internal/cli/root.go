// Package cli implements the dtsc command line.
package cli

import (
	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/config"
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/tokens"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state shared by the commands of one invocation
type app struct {
	v          *viper.Viper
	cfg        config.Config
	configFile string
	jobs       int
}

// NewRootCommand creates the dtsc command tree. Each call has its own
// configuration, so tests may build as many as they like.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "dtsc",
		Short: "Compile SCSS-like stylesheets to CSS",
		Long: `dtsc compiles SCSS-like stylesheets to plain CSS. It substitutes
variables, evaluates color functions, flattens nested rules and inlines
imports. Design token files may seed the variables every stylesheet sees.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default is ./"+config.FileName+")")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("out-dir", "", "directory for compiled CSS")
	flags.String("style", "", "output style: expanded or compressed")
	flags.StringSlice("load-path", nil, "extra directory searched by @import (repeatable)")
	flags.StringSlice("tokens", nil, "design token file seeding variables (repeatable)")
	flags.String("prefix", "", "prefix for variables made from tokens")
	flags.StringToString("var", nil, "set a variable, e.g. --var brand=#1abc9c")
	flags.Bool("validate", false, "re-parse compiled CSS and report problems")
	flags.Bool("strict", false, "treat validation problems as errors")

	bindings := map[string]string{
		"log_level":     "log-level",
		"out_dir":       "out-dir",
		"style":         "style",
		"load_paths":    "load-path",
		"tokens.files":  "tokens",
		"tokens.prefix": "prefix",
		"variables":     "var",
		"validate":      "validate",
		"strict":        "strict",
	}
	for key, flag := range bindings {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newCompileCommand(a),
		newBuildCommand(a),
		newCheckCommand(a),
		newWatchCommand(a),
		newServeCommand(a),
		newInitCommand(),
		newVersionCommand(),
	)
	return root
}

// setup loads configuration and applies the log settings
func (a *app) setup(cmd *cobra.Command, args []string) error {
	log.SetOutput(cmd.ErrOrStderr())

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	a.cfg = cfg
	return nil
}

// skipSetup replaces setup on commands that need no configuration
func skipSetup(cmd *cobra.Command, args []string) error {
	log.SetOutput(cmd.ErrOrStderr())
	return nil
}

func addJobsFlag(cmd *cobra.Command, a *app) {
	cmd.Flags().IntVarP(&a.jobs, "jobs", "j", 0, "stylesheets compiled in parallel (default GOMAXPROCS)")
}

// loadVariables reads the configured token files
func (a *app) loadVariables() (*tokens.Manager, error) {
	manager := tokens.NewManager()
	if err := build.LoadTokens(manager, a.cfg.Tokens.Files, a.cfg.Tokens.Prefix); err != nil {
		return nil, err
	}
	if n := manager.Count(); n > 0 {
		log.Debug("loaded %d tokens", n)
	}
	return manager, nil
}

// newBuilder creates a Builder from the loaded configuration. sources,
// when given, replace the configured source patterns.
func (a *app) newBuilder(sources []string) (*build.Builder, error) {
	manager, err := a.loadVariables()
	if err != nil {
		return nil, err
	}
	vars, err := build.Variables(manager, a.cfg.Variables)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		sources = a.cfg.Sources
	}
	return build.New(build.Options{
		Root:      ".",
		Sources:   sources,
		OutDir:    a.cfg.OutDir,
		Style:     a.cfg.OutputStyle(),
		LoadPaths: a.cfg.LoadPaths,
		Variables: vars,
		Validate:  a.cfg.ValidateOutput,
		Strict:    a.cfg.Strict,
		Jobs:      a.jobs,
	}), nil
}
