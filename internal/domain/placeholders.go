package domain

import "time"

// Placeholders are the fixed values recorded when real data cannot be obtained,
// so that absence is stored instead of silently dropped
type Placeholders struct {
	StreamerID   int64
	StreamerName string

	ChannelID   int64
	ChannelName string
	CompanyName string

	// StreamingTitle is used for programs whose page returned a non-200 status
	StreamingTitle string

	// NonexistentStreamer is returned by name lookups for unseen streamer ids
	NonexistentStreamer string
}

// PlaceholderTime is the start and end time of records for unreachable pages
// (the day the live service opened)
var PlaceholderTime = time.Date(2007, 12, 25, 0, 0, 0, 0, time.UTC)

// DefaultPlaceholders returns the placeholder values used when none are configured
func DefaultPlaceholders() Placeholders {
	return Placeholders{
		StreamerID:          0,
		StreamerName:        "不明な配信者",
		ChannelID:           0,
		ChannelName:         "不明なチャンネル",
		CompanyName:         "不明な企業",
		StreamingTitle:      "存在しない配信です。",
		NonexistentStreamer: "存在しない配信者です。",
	}
}

// UnreachableRecord builds the record saved when a program page answers with a
// non-200 status. The status code is stored in place of the program status.
func (p Placeholders) UnreachableRecord(externalID string, statusCode int) StreamRecord {
	return StreamRecord{
		ExternalID:         externalID,
		ProviderKind:       ProviderUnknown,
		Title:              p.StreamingTitle,
		StartTime:          PlaceholderTime,
		EndTime:            PlaceholderTime,
		Duration:           0,
		Status:             Status(statusCode),
		StreamerExternalID: p.StreamerID,
		StreamerName:       p.StreamerName,
		ChannelExternalID:  p.ChannelID,
		ChannelName:        p.ChannelName,
		CompanyName:        p.CompanyName,
	}
}
