package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "zeuscene",
		Short:        "Component orchestration runtime for 3D scenes",
		SilenceUsage: true,
	}
	root.AddCommand(
		newRunCmd(),
		newValidateCmd(),
	)
	return root
}
