package movie

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/catalog/application/queries"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the movie catalog",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListMoviesHandler == nil {
			return fmt.Errorf("movie commands require database connection")
		}

		movies, err := app.ListMoviesHandler.Handle(cmd.Context(), queries.ListMoviesQuery{})
		if err != nil {
			return fmt.Errorf("failed to list movies: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(movies) == 0 {
			fmt.Fprintln(out, "No movies in the catalog.")
			fmt.Fprintln(out, "Use 'cinema movie add' to add one.")
			return nil
		}

		fmt.Fprintf(out, "%-30s %8s  %s\n", "NAME", "DURATION", "3D")
		fmt.Fprintln(out, strings.Repeat("-", 44))
		for _, m := range movies {
			glasses := ""
			if m.ThreeDimensionalGlassesNeeded {
				glasses = "yes"
			}
			fmt.Fprintf(out, "%-30s %7dm  %s\n", m.Name, m.DurationMinutes, glasses)
		}
		fmt.Fprintf(out, "\n%d movies\n", len(movies))
		return nil
	},
}
