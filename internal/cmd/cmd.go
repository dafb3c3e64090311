// Package cmd implements the typeshift command line.
package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/config"
	"github.com/koskimas/typeshift/internal/gen"
	"github.com/koskimas/typeshift/internal/logger"
	"github.com/koskimas/typeshift/internal/pipeline"
	"github.com/koskimas/typeshift/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Settings struct {
	WorkingDir string
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// Run executes the command line args, without the program name.
func Run(s Settings, args []string) error {
	root := NewRootCommand(s)
	root.SetArgs(args)
	return root.Execute()
}

// app is the state shared by every command. It's filled in by setup before
// a command runs.
type app struct {
	s Settings

	configPath string
	logLevel   string
	logJSON    bool

	config *config.Config
	log    *zap.SugaredLogger
}

func NewRootCommand(s Settings) *cobra.Command {
	if s.Stdin == nil {
		s.Stdin = os.Stdin
	}
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}

	a := &app{s: s}

	root := newGenerateCommand(a)
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetIn(s.Stdin)
	root.SetOut(s.Stdout)
	root.SetErr(s.Stderr)

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a.log != nil {
			a.log.Sync()
		}
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", config.FileName, "Config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&a.logJSON, "log-json", false, "Log as JSON")

	root.AddCommand(
		newTargetsCommand(a),
		newCheckCommand(a),
		newWatchCommand(a),
		newServeCommand(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.path(a.configPath))
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = a.logJSON
	}

	log, err := logger.New(logger.Options{
		JSON:   cfg.Log.JSON,
		Level:  cfg.Log.Level,
		Output: a.s.Stderr,
	})
	if err != nil {
		return err
	}

	a.config = cfg
	a.log = log
	return nil
}

// path resolves p against the working directory.
func (a *app) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(a.s.WorkingDir, p)
}

func (a *app) readInput(input string) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(a.s.Stdin)
		if err != nil {
			return "", errors.Wrap(err, "failed to read stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(a.path(input))
	if err != nil {
		return "", errors.Wrapf(err, `failed to read input file "%s"`, input)
	}

	return string(data), nil
}

func (a *app) writeOutput(output string, text string) error {
	if output == "" || output == "-" {
		_, err := io.WriteString(a.s.Stdout, text)
		return err
	}

	path := a.path(output)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, `failed to create directory for "%s"`, output)
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, `failed to write output file "%s"`, output)
	}

	return nil
}

// openStore opens the configured store. The returned function closes it.
func (a *app) openStore() (store.ContentCache, store.SettingsStore, func() error, error) {
	if a.config.Store.Driver != "sqlite" {
		return store.NewMemoryCache(), store.NewMemorySettings(), func() error { return nil }, nil
	}

	db, err := store.Open(a.path(a.config.Store.Path), a.log)
	if err != nil {
		return nil, nil, nil, err
	}

	return db.Content(), db.Settings(), db.Close, nil
}

func (a *app) newPipeline(cache store.ContentCache) (*pipeline.Pipeline, error) {
	opts, err := a.config.GenOptions()
	if err != nil {
		return nil, err
	}

	return pipeline.New(a.log, pipeline.Options{
		Gen:    opts,
		Format: a.config.Format,
		Cache:  cache,
	}), nil
}

// target returns the --target flag when set and the configured target
// otherwise.
func (a *app) target(cmd *cobra.Command, flag string) (gen.Target, error) {
	if cmd.Flags().Changed("target") {
		return gen.ParseTarget(flag)
	}

	return gen.ParseTarget(a.config.Target)
}

func (a *app) input(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return a.config.Input
}
