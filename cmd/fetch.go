package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"nicodb/internal/domain"
)

var fetchDryRun bool

var fetchCmd = &cobra.Command{
	Use:   "fetch <streaming_id>",
	Short: "Fetch one program page and store it",
	Long: `Fetches the watch page of one program id (with or without the "lv" prefix),
extracts the program data and stores it. Pages that answer with a non-200
status are stored as placeholder records carrying the status code.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "print the normalized record as JSON without storing it")
}

// recordView is the JSON shape printed by --dry-run
type recordView struct {
	ExternalID      string    `json:"external_id"`
	Outcome         string    `json:"outcome"`
	ProviderKind    string    `json:"provider_kind"`
	Title           string    `json:"title"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Duration        string    `json:"duration"`
	DurationSeconds int64     `json:"duration_seconds"`
	Status          int       `json:"status"`
	StatusName      string    `json:"status_name"`
	StreamerID      int64     `json:"streamer_id"`
	StreamerName    string    `json:"streamer_name"`
	ChannelID       int64     `json:"channel_id"`
	ChannelName     string    `json:"channel_name"`
	CompanyName     string    `json:"company_name"`
}

func newRecordView(record domain.StreamRecord, outcome domain.Outcome) recordView {
	return recordView{
		ExternalID:      record.ExternalID,
		Outcome:         outcome.String(),
		ProviderKind:    record.ProviderKind.String(),
		Title:           record.Title,
		StartTime:       record.StartTime,
		EndTime:         record.EndTime,
		Duration:        record.Duration.String(),
		DurationSeconds: int64(record.Duration / time.Second),
		Status:          int(record.Status),
		StatusName:      record.Status.String(),
		StreamerID:      record.StreamerExternalID,
		StreamerName:    record.StreamerName,
		ChannelID:       record.ChannelExternalID,
		ChannelName:     record.ChannelName,
		CompanyName:     record.CompanyName,
	}
}

// parseStreamingID accepts "123" or "lv123"
func parseStreamingID(arg string) (string, error) {
	id := strings.TrimPrefix(arg, "lv")
	if n, err := strconv.ParseInt(id, 10, 64); err != nil || n < 0 {
		err := fmt.Errorf("%w: streaming id must be a non-negative number, got %q", domain.ErrInvalidInput, arg)
		return "", domain.NewUserFriendlyError(err, err.Error(), exitUsageError)
	}
	return id, nil
}

func runFetch(cmd *cobra.Command, args []string) (err error) {
	streamingID, err := parseStreamingID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.closeWith(&err)

	if fetchDryRun {
		record, outcome, err := a.pipeline.Preview(cmd.Context(), streamingID)
		if err != nil {
			return domain.NewUserFriendlyError(err, fmt.Sprintf("failed to fetch streaming %s: %v", streamingID, err), exitFailure)
		}
		out, err := json.MarshalIndent(newRecordView(record, outcome), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	outcome, err := a.pipeline.FetchAndStore(cmd.Context(), streamingID)
	if err != nil {
		return domain.NewUserFriendlyError(err, fmt.Sprintf("failed to fetch streaming %s: %v", streamingID, err), exitFailure)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", streamingID, outcome)
	return nil
}
