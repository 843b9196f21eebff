package main

import (
	"fmt"
	"os"

	"github.com/pbanos/treekernel/dataset"
	"github.com/pbanos/treekernel/feature"
	"github.com/pbanos/treekernel/tree/ptb"
	"github.com/spf13/cobra"
)

type evalCmdConfig struct {
	*rootCmdConfig
	datasetInput string
	instanceA    string
	instanceB    string
	maxDBConns   int
}

func evalCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &evalCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "eval [TREE1 TREE2]",
		Short: "Evaluate the kernel on a pair of trees or instances",
		Long:  `Evaluate the kernel on two trees given as arguments in Penn Treebank notation, or on two instances of a dataset, and print its value`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate(args)
			if err != nil {
				config.Exit(1, err)
			}
			k, err := config.Kernel(cmd, nil)
			if err != nil {
				config.Exit(2, err)
			}
			fv1, fv2, err := config.vectors(args)
			if err != nil {
				config.Exit(3, err)
			}
			v, err := k.Evaluate(config.Context(), fv1, fv2)
			if err != nil {
				config.Exit(4, fmt.Errorf("evaluating kernel: %v", err))
			}
			config.Logf("Cache stats: %+v", k.Cache().Stats())
			fmt.Fprintln(os.Stdout, v)
			config.Exit(0, nil)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.datasetInput), "input", "i", "", "path to "+datasetLocationHelp+" with the instances to compare")
	cmd.PersistentFlags().StringVarP(&(config.instanceA), "instance-a", "a", "", "id of the first instance to compare (requires input)")
	cmd.PersistentFlags().StringVarP(&(config.instanceB), "instance-b", "b", "", "id of the second instance to compare (requires input)")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (ecc *evalCmdConfig) Validate(args []string) error {
	if ecc.datasetInput == "" {
		if len(args) != 2 {
			return fmt.Errorf("expected two trees as arguments or an input dataset, got %d arguments", len(args))
		}
		return nil
	}
	if len(args) != 0 {
		return fmt.Errorf("cannot take trees as arguments together with an input dataset")
	}
	if ecc.instanceA == "" || ecc.instanceB == "" {
		return fmt.Errorf("required instance-a and instance-b flags must be set with an input dataset")
	}
	return nil
}

func (ecc *evalCmdConfig) vectors(args []string) (*feature.TreeFeatureVector, *feature.TreeFeatureVector, error) {
	if ecc.datasetInput == "" {
		return feature.FromTrees(ptb.Normalize(args[0])), feature.FromTrees(ptb.Normalize(args[1])), nil
	}
	ctx := ecc.Context()
	ds, closer, err := ecc.OpenDataset(ctx, ecc.datasetInput, ecc.maxDBConns)
	if err != nil {
		return nil, nil, err
	}
	defer closer()
	instances, err := ds.Instances(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieving dataset instances: %v", err)
	}
	a, ok := dataset.Find(instances, ecc.instanceA)
	if !ok {
		return nil, nil, fmt.Errorf("instance %q not found", ecc.instanceA)
	}
	b, ok := dataset.Find(instances, ecc.instanceB)
	if !ok {
		return nil, nil, fmt.Errorf("instance %q not found", ecc.instanceB)
	}
	return a.Vector, b.Vector, nil
}
