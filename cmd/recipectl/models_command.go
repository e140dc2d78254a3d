package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models available on the configured endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.llmClient()
			if err != nil {
				return err
			}
			models, err := client.GetModels(cmd.Context())
			if err != nil {
				return err
			}

			sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
			view := newTableView(
				column{title: "Model"},
				column{title: "Context", align: alignRight},
				column{title: "Prompt $/token", align: alignRight},
				column{title: "Completion $/token", align: alignRight},
			)
			for _, m := range models {
				if filter != "" && !strings.Contains(strings.ToLower(m.ID), strings.ToLower(filter)) {
					continue
				}
				view.add(m.ID, strconv.Itoa(m.ContextLength), m.Pricing.Prompt.String(), m.Pricing.Completion.String())
			}
			if len(view.rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No models found")
				return nil
			}
			view.footer = fmt.Sprintf("%d of %d models", len(view.rows), len(models))
			fmt.Fprintln(cmd.OutOrStdout(), view.render())
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show models whose id contains this text")
	return cmd
}
