package main

import (
	"fmt"

	"github.com/pbanos/treekernel/dataset"
	"github.com/spf13/cobra"
)

type setCmdConfig struct {
	*rootCmdConfig
	datasetInput  string
	datasetOutput string
	maxDBConns    int
}

func setCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &setCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Manage datasets",
		Long:  `Copy a dataset of tree feature vectors from one backend to another`,
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
				config.Exit(4, fmt.Errorf("invalid dataset: %v", err))
			}
			config.Logf("Dumping %d instances into output dataset...", len(instances))
			err = config.WriteDataset(ctx, config.datasetOutput, config.maxDBConns, instances)
			if err != nil {
				config.Exit(5, err)
			}
			config.Logf("Done")
			config.Exit(0, nil)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.datasetInput), "input", "i", "", "path to "+datasetLocationHelp+" with the input dataset (defaults to STDIN, interpreted as YML)")
	cmd.PersistentFlags().StringVarP(&(config.datasetOutput), "output", "o", "", "path to "+datasetLocationHelp+" to dump the output dataset (defaults to STDOUT in YML)")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (scc *setCmdConfig) Validate() error {
	if scc.datasetInput != "" && scc.datasetInput == scc.datasetOutput {
		return fmt.Errorf("input and output datasets must be different")
	}
	return nil
}
