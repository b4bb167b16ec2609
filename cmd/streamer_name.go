package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nicodb/internal/domain"
)

var streamerNameHistory bool

var streamerNameCmd = &cobra.Command{
	Use:   "streamer-name <streamer_id>",
	Short: "Print the current name of a streamer",
	Args:  cobra.ExactArgs(1),
	RunE:  runStreamerName,
}

func init() {
	streamerNameCmd.Flags().BoolVar(&streamerNameHistory, "history", false, "print every recorded name, oldest first")
}

func runStreamerName(cmd *cobra.Command, args []string) (err error) {
	streamerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		err := fmt.Errorf("%w: streamer id must be a number, got %q", domain.ErrInvalidInput, args[0])
		return domain.NewUserFriendlyError(err, err.Error(), exitUsageError)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.closeWith(&err)

	if streamerNameHistory {
		history, err := a.reconciler.History(cmd.Context(), streamerID)
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.Placeholders.NonexistentStreamer)
			return nil
		}
		for _, s := range history {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.RecordedAt.Format(time.RFC3339), s.Name)
		}
		return nil
	}

	name, err := a.reconciler.LatestName(cmd.Context(), streamerID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}
