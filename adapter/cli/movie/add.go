package movie

import (
	"fmt"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/catalog/application/commands"
	"github.com/spf13/cobra"
)

var (
	addName     string
	addDuration int
	add3D       bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a movie to the catalog",
	Long: `Add a movie to the catalog. Movie names are unique.

Examples:
  cinema movie add --name "Dune" --duration 155
  cinema movie add --name "Avatar" --duration 162 --3d`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AddMovieHandler == nil {
			return fmt.Errorf("movie commands require database connection")
		}

		result, err := app.AddMovieHandler.Handle(cmd.Context(), commands.AddMovieCommand{
			Name:                          addName,
			DurationMinutes:               addDuration,
			ThreeDimensionalGlassesNeeded: add3D,
		})
		if err != nil {
			return fmt.Errorf("failed to add movie: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added movie %q (%dm)\n", result.Name, addDuration)
		fmt.Fprintf(out, "  ID: %s\n", result.MovieID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "movie name (required)")
	addCmd.Flags().IntVarP(&addDuration, "duration", "d", 0, "running time in minutes (required)")
	addCmd.Flags().BoolVar(&add3D, "3d", false, "screening needs 3D glasses")

	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("duration")
}
