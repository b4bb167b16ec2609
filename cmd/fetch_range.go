package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"nicodb/internal/domain"
	"nicodb/internal/service"
)

var fetchRangeCmd = &cobra.Command{
	Use:   "fetch-range <start_id> [end_id]",
	Short: "Fetch and store every program id in an inclusive range",
	Long: `Fetches program ids from start_id to end_id in ascending order, one at a
time. end_id defaults to start_id. Failures of single ids are logged and
skipped. SIGINT or SIGTERM stops the run after the id in flight.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFetchRange,
}

func parseRangeID(name, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		err := fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidInput, name, arg)
		return 0, domain.NewUserFriendlyError(err, err.Error(), exitUsageError)
	}
	return id, nil
}

func runFetchRange(cmd *cobra.Command, args []string) (err error) {
	start, err := parseRangeID("start_id", args[0])
	if err != nil {
		return err
	}
	var end *int64
	if len(args) == 2 {
		v, err := parseRangeID("end_id", args[1])
		if err != nil {
			return err
		}
		end = &v
	}

	// Validated before anything is opened or fetched
	ids, err := service.ResolveRange(start, end)
	if err != nil {
		return domain.NewUserFriendlyError(err, err.Error(), exitUsageError)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.closeWith(&err)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := service.NewRangeRunner(a.pipeline).Run(ctx, ids)

	fmt.Fprintf(cmd.OutOrStdout(), "range %d-%d: stored=%d recovered=%d failed=%d\n",
		ids.Start, ids.End, len(result.Stored), len(result.Recovered), len(result.Failed))
	if result.Cancelled {
		fmt.Fprintf(cmd.OutOrStdout(), "interrupted after %d of %d ids\n", result.Processed(), ids.Len())
	}
	return nil
}
