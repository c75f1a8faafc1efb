// Package main provides the vibe-liftover command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-liftover/internal/chain"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks errors caused by bad flags or arguments.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "vibe-liftover",
		Short: "Lift genomic coordinates between assemblies with UCSC chain files",
		Long: `vibe-liftover maps positions and regions from the reference assembly of a
UCSC chain file onto its query assembly.

Coordinates are zero-based; regions are half-open [start, stop).`,
		Example: `  # Lift a single region
  vibe-liftover --chain hg19ToHg38.over.chain.gz region chr22:24363328-24364950

  # Lift a BED file
  vibe-liftover --chain hg19ToHg38.over.chain.gz lift regions.bed -o lifted.tsv

  # Store the chain file path in ~/.vibe-liftover.yaml
  vibe-liftover config set chain /data/hg19ToHg38.over.chain.gz`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}
	cmd.SetVersionTemplate("vibe-liftover version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err}
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ~/.vibe-liftover.yaml)")
	flags.String("chain", "", "Chain file (plain or gzipped, '-' for stdin)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	_ = viper.BindPFlag("chain", flags.Lookup("chain"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	cmd.AddCommand(newPositionCmd())
	cmd.AddCommand(newRegionCmd())
	cmd.AddCommand(newLiftCmd())
	cmd.AddCommand(newChainsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads the config file and environment. A missing default
// config file is not an error.
func initConfig(cfgFile string) error {
	viper.SetEnvPrefix("VIBE_LIFTOVER")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.SetConfigFile(filepath.Join(home, ".vibe-liftover.yaml"))
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// newLogger builds a console logger on stderr.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if viper.GetBool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadChainFile loads the chain file named by --chain or the config.
func loadChainFile(logger *zap.Logger) (*chain.File, string, error) {
	path := viper.GetString("chain")
	if path == "" {
		return nil, "", &usageError{errors.New("no chain file: use --chain or 'vibe-liftover config set chain <path>'")}
	}
	cf, err := chain.LoadWithLogger(path, logger)
	if err != nil {
		return nil, "", err
	}
	logger.Info("loaded chains",
		zap.String("path", path),
		zap.Int("chains", cf.ChainCount()))
	return cf, path, nil
}
