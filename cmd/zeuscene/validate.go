package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/zeusync/zeuscene/internal/core/scene"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate [config]",
		Short:   "Check a scene config and list the components it would add",
		Example: "zeuscene validate scene.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := scene.LoadConfigFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var unknown int
			for i, spec := range cfg.Components {
				status := "ok"
				if !slices.Contains(builtinNames(), spec.Component) {
					status = "unknown component"
					unknown++
				}
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", i, spec.Component, spec.Name, status)
			}
			if unknown > 0 {
				return fmt.Errorf("%d unknown component(s)", unknown)
			}
			return nil
		},
	}
}
