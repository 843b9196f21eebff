package main

import (
	"fmt"
	"os"

	"github.com/pbanos/treekernel/tree"
	treejson "github.com/pbanos/treekernel/tree/json"
	"github.com/pbanos/treekernel/tree/ptb"
	"github.com/spf13/cobra"
)

type parseCmdConfig struct {
	*rootCmdConfig
	format string
}

func parseCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &parseCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "parse TREE...",
		Short: "Parse trees in Penn Treebank notation",
		Long:  `Parse trees in Penn Treebank bracketed notation and print each one along its number of nodes and its kernel value against itself`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				config.Exit(1, err)
			}
			k, err := config.Kernel(cmd, nil)
			if err != nil {
				config.Exit(2, err)
			}
			for i, arg := range args {
				t, err := k.Cache().Tree(config.Context(), ptb.Normalize(arg))
				if err != nil {
					config.Exit(3, fmt.Errorf("tree #%d: %v", i+1, err))
				}
				err = config.writeTree(t)
				if err != nil {
					config.Exit(4, fmt.Errorf("writing tree #%d: %v", i+1, err))
				}
				fmt.Fprintf(os.Stdout, "nodes: %d\nself-similarity: %v\n", t.Size(), k.Similarity(t, t))
				if i < len(args)-1 {
					fmt.Fprintln(os.Stdout)
				}
			}
			config.Exit(0, nil)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.format), "format", "f", "sketch", "how to print each tree, the following are valid: sketch, json, ptb")
	return cmd
}

func (pcc *parseCmdConfig) Validate() error {
	switch pcc.format {
	case "sketch", "json", "ptb":
		return nil
	}
	return fmt.Errorf("unknown tree format %q", pcc.format)
}

func (pcc *parseCmdConfig) writeTree(t *tree.Tree) error {
	switch pcc.format {
	case "json":
		err := treejson.WriteJSONTree(t, os.Stdout)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout)
		return err
	case "ptb":
		_, err := fmt.Fprintln(os.Stdout, t)
		return err
	}
	_, err := fmt.Fprint(os.Stdout, t.Sketch())
	return err
}
