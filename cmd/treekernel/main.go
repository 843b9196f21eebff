package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pbanos/treekernel/cache"
	"github.com/pbanos/treekernel/kernel"
	kyaml "github.com/pbanos/treekernel/kernel/yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootCmdConfig struct {
	verbose    bool
	configFile string
	lambda     float64
	normalize  bool
	sumMethod  string
	logger     *zap.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	return newRootCmd(&rootCmdConfig{})
}

func newRootCmd(config *rootCmdConfig) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treekernel",
		Short: "treekernel is a tool to compute tree kernels",
		Long:  `A tool to compare constituency trees with the subset tree kernel and compute kernel matrices over datasets of tree feature vectors`,
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "")
	rootCmd.PersistentFlags().StringVarP(&(config.configFile), "config", "c", "", "path to a YML file with a kernel configuration (flags explicitly set take precedence)")
	rootCmd.PersistentFlags().Float64VarP(&(config.lambda), "lambda", "l", kernel.DefaultLambda, "decay factor in (0, 1] discounting larger common subtrees")
	rootCmd.PersistentFlags().BoolVarP(&(config.normalize), "normalize", "n", false, "normalize each field's kernel value by the norms of its trees")
	rootCmd.PersistentFlags().StringVar(&(config.sumMethod), "sum-method", kernel.Sequential.String(), "how to combine the values of the fields, the following are valid: sequential, all-pairs")
	rootCmd.AddCommand(versionCmd(), parseCmd(config), evalCmd(config), gramCmd(config), setCmd(config))
	return rootCmd
}

// KernelConfig returns the kernel configuration read from the
// config file, if any, with the kernel flags explicitly set on
// cmd applied over it.
func (rcc *rootCmdConfig) KernelConfig(cmd *cobra.Command) (kernel.Config, error) {
	cfg := kernel.DefaultConfig()
	var err error
	if rcc.configFile != "" {
		rcc.Logf("Reading kernel configuration from %s...", rcc.configFile)
		cfg, err = kyaml.ReadConfigFromFile(rcc.configFile)
		if err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("lambda") {
		cfg.Lambda = rcc.lambda
	}
	if flags.Changed("normalize") {
		cfg.Normalize = rcc.normalize
	}
	if flags.Changed("sum-method") {
		cfg.SumMethod, err = kernel.ParseForestSumMethod(rcc.sumMethod)
		if err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// Kernel returns a subset tree kernel configured for cmd that
// uses the given cache, or a new in-memory one if nil.
func (rcc *rootCmdConfig) Kernel(cmd *cobra.Command, c *cache.Cache) (*kernel.SubsetTreeKernel, error) {
	cfg, err := rcc.KernelConfig(cmd)
	if err != nil {
		return nil, err
	}
	rcc.Logf("Using subset tree kernel with lambda %v, normalize %v and sum method %v", cfg.Lambda, cfg.Normalize, cfg.SumMethod)
	return kernel.NewSubsetTreeKernel(cfg, c, rcc.Logger())
}

// Context returns a context cancelled when the process
// receives an interrupt.
func (rcc *rootCmdConfig) Context() context.Context {
	if rcc.ctx == nil {
		rcc.ctx, rcc.cancelFunc = signal.NotifyContext(context.Background(), os.Interrupt)
	}
	return rcc.ctx
}

// Exit prints err, if any, flushes the logs and ends the
// process with the given code.
func (rcc *rootCmdConfig) Exit(code int, err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if rcc.cancelFunc != nil {
		rcc.cancelFunc()
	}
	if rcc.logger != nil {
		rcc.logger.Sync()
	}
	os.Exit(code)
}
