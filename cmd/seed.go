// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/absmach/cuecast/pkg/store"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Validate a seed file and summarize its cue stacks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := store.LoadSeedFile(args[0])
			if err != nil {
				return fmt.Errorf("invalid seed %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Seed "+args[0]))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tSTACK\tCOLUMNS\tCUES")
			for i, s := range seed.Stacks {
				marker := " "
				if i == seed.SelectedStack {
					marker = "*"
				}
				fmt.Fprintf(w, "%s%d\t%s\t%d\t%d\n", marker, i, s.Name, len(s.Columns), len(s.Cues))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "%d highlight colors\n", len(seed.Highlights))
			if len(seed.Stacks) == 0 {
				fmt.Fprintln(out, warnStyle.Render("no cue stacks: viewers will see an error until the editor pushes one"))
			} else if seed.SelectedStack < 0 || seed.SelectedStack >= len(seed.Stacks) {
				fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("selected_stack %d is out of range", seed.SelectedStack)))
			}
			return nil
		},
	}
}
