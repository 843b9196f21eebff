package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in treekernel's version
	VersionMajor = 0
	// VersionMinor is the minor number in treekernel's version
	VersionMinor = 1
	// VersionPatch is the patch number in treekernel's version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of treekernel",
		Long:  `All software has versions. This is treekernel's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("treekernel v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
