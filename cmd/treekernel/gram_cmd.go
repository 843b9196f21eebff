package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pbanos/treekernel"
	"github.com/pbanos/treekernel/cache"
	"github.com/pbanos/treekernel/cache/redisstore"
	"github.com/pbanos/treekernel/dataset"
	"github.com/pbanos/treekernel/tree/ptb"
	"github.com/spf13/cobra"
	"gopkg.in/redis.v5"
)

type gramCmdConfig struct {
	*rootCmdConfig
	datasetInput string
	output       string
	format       string
	workers      int
	maxDBConns   int
	redisAddr    string
	redisDB      int
	redisPrefix  string
	redisClient  *redis.Client
}

func gramCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &gramCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "gram",
		Short: "Compute the kernel matrix of a dataset",
		Long:  `Compute the kernel (Gram) matrix of the instances of a dataset and write it in LIBSVM precomputed kernel format or as CSV`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				config.Exit(1, err)
			}
			ctx := config.Context()
			ds, closer, err := config.OpenDataset(ctx, config.datasetInput, config.maxDBConns)
			if err != nil {
				config.Exit(2, err)
			}
			instances, err := ds.Instances(ctx)
			closer()
			if err != nil {
				config.Exit(3, fmt.Errorf("retrieving dataset instances: %v", err))
			}
			err = dataset.Validate(instances)
			if err != nil {
				config.Exit(3, fmt.Errorf("invalid dataset: %v", err))
			}
			c, err := config.cache()
			if err != nil {
				config.Exit(4, err)
			}
			k, err := config.Kernel(cmd, c)
			if err != nil {
				config.Exit(5, err)
			}
			m, err := treekernel.ComputeMatrix(ctx, k, dataset.New(instances), config.workers, config.Logger())
			if err != nil {
				config.Exit(6, fmt.Errorf("computing kernel matrix: %v", err))
			}
			config.Logf("Cache stats: %+v", c.Stats())
			err = c.Close(ctx)
			if err != nil {
				config.Exit(6, fmt.Errorf("closing norm store: %v", err))
			}
			if config.redisClient != nil {
				config.redisClient.Close()
			}
			err = config.writeMatrix(m)
			if err != nil {
				config.Exit(7, fmt.Errorf("writing kernel matrix: %v", err))
			}
			config.Logf("Done")
			config.Exit(0, nil)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.datasetInput), "input", "i", "", "path to "+datasetLocationHelp+" with the instances (defaults to STDIN, interpreted as YML)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the kernel matrix will be written (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.format), "format", "f", "libsvm", "format of the kernel matrix, the following are valid: libsvm, csv")
	cmd.PersistentFlags().IntVarP(&(config.workers), "workers", "w", runtime.NumCPU(), "number of rows of the matrix computed concurrently")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	cmd.PersistentFlags().StringVar(&(config.redisAddr), "redis-addr", "", "address of a redis server where tree norms are shared (defaults to keeping them in memory)")
	cmd.PersistentFlags().IntVar(&(config.redisDB), "redis-db", 0, "redis DB where tree norms are kept")
	cmd.PersistentFlags().StringVar(&(config.redisPrefix), "redis-prefix", "treekernel:norm", "prefix of the redis keys where tree norms are kept")
	return cmd
}

func (gcc *gramCmdConfig) Validate() error {
	if gcc.format != "libsvm" && gcc.format != "csv" {
		return fmt.Errorf("unknown matrix format %q", gcc.format)
	}
	if gcc.workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", gcc.workers)
	}
	return nil
}

func (gcc *gramCmdConfig) cache() (*cache.Cache, error) {
	if gcc.redisAddr == "" {
		return cache.New(ptb.Parser, nil, gcc.Logger()), nil
	}
	gcc.Logf("Connecting to redis at %s to keep tree norms...", gcc.redisAddr)
	rc := redis.NewClient(&redis.Options{Addr: gcc.redisAddr, DB: gcc.redisDB})
	err := rc.Ping().Err()
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("connecting to redis: %v", err)
	}
	gcc.redisClient = rc
	return cache.New(ptb.Parser, redisstore.New(rc, gcc.redisPrefix), gcc.Logger()), nil
}

func (gcc *gramCmdConfig) writeMatrix(m *treekernel.Matrix) error {
	write := m.WriteLIBSVM
	if gcc.format == "csv" {
		write = m.WriteCSV
	}
	if gcc.output == "" {
		return write(os.Stdout)
	}
	return writeFile(gcc.output, write)
}
