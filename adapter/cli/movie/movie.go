package movie

import (
	"github.com/spf13/cobra"
)

// Cmd is the movie command group
var Cmd = &cobra.Command{
	Use:   "movie",
	Short: "Manage the movie catalog",
	Long:  `Add movies to the catalog and list the movies that can be scheduled.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
}
