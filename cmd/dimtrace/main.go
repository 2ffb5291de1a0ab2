// dimtrace records dimension expressions over the shapes of named inputs, and resolves them.
//
// Example:
//
//	dimtrace eval --input x=3x4 --dump 'int(size(x, 0) * size(x, 1))'
package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dimtrace",
		Short: "Record and resolve symbolic dimension expressions",
		Long: `dimtrace records dimension expressions (size, +, *, / and int) over the shapes
of named inputs in a graph, and resolves them to integers.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	cmd.AddCommand(newEvalCommand())
	return cmd
}
