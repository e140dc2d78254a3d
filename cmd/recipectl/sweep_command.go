package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/spf13/cobra"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove recipes whose creation never finished",
		Long: "Deletes recipes older than --older-than that still have all-zero nutrition,\n" +
			"no manual override and no successful AI run, then marks pending AI runs of\n" +
			"the same age as failed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := ctx.logger()
			if err != nil {
				return err
			}
			db, err := ctx.database(cmd.Context())
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			result, err := service.NewSweepService(db, log).Sweep(cmd.Context(), olderThan)
			if err != nil {
				return err
			}

			view := newTableView(
				column{title: "Cutoff"},
				column{title: "Recipes deleted", align: alignRight},
				column{title: "Runs abandoned", align: alignRight},
			)
			view.add(olderThan.String(),
				strconv.FormatInt(result.RecipesDeleted, 10),
				strconv.FormatInt(result.RunsAbandoned, 10))
			fmt.Fprintln(cmd.OutOrStdout(), view.render())
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", time.Hour, "Only consider rows created before now minus this duration")
	return cmd
}
