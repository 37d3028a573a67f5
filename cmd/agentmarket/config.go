package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentmarket/config"
	"github.com/hupe1980/agentmarket/logging"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "YAML or TOML configuration file",
	}
	timeUnitFlag = cli.DurationFlag{
		Name:  "time-unit",
		Usage: "wall-clock length of one simulation time unit",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error",
	}
	logFormatFlag = cli.StringFlag{
		Name:  "log-format",
		Usage: "json or text",
	}

	configFlags = []cli.Flag{configFileFlag, timeUnitFlag, logLevelFlag, logFormatFlag}

	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		Flags:       configFlags,
		Description: `The dumpconfig command prints the effective configuration as YAML.`,
	}
)

// loadConfig reads the config file and applies the command line overrides.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg, err := config.Load(ctx.String(configFileFlag.Name))
	if err != nil {
		return config.Config{}, err
	}

	if ctx.IsSet(timeUnitFlag.Name) {
		cfg.TimeUnit = config.D(ctx.Duration(timeUnitFlag.Name))
	}
	if ctx.IsSet(logLevelFlag.Name) {
		cfg.Log.Level = ctx.String(logLevelFlag.Name)
	}
	if ctx.IsSet(logFormatFlag.Name) {
		cfg.Log.Format = ctx.String(logFormatFlag.Name)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	_, err = os.Stdout.Write(out)

	return err
}

// newLogger builds the configured backend. Logs go to stderr so they do not
// interleave with the console view on stdout. The returned func flushes
// buffered entries.
func newLogger(cfg config.LogConfig) (logging.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Backend == "zap" {
		z, err := logging.NewZapLogger(level, cfg.Format)
		if err != nil {
			return nil, nil, fmt.Errorf("zap logger: %w", err)
		}

		return z, func() { _ = z.Sync() }, nil
	}

	l := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Format,
		Output:    os.Stderr,
		Component: "agentmarket",
	})

	return l, func() {}, nil
}
