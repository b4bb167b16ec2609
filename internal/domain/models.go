package domain

import (
	"strconv"
	"time"
)

// ProviderKind classifies who broadcasts a program
type ProviderKind int

const (
	ProviderUnknown ProviderKind = 0
	ProviderUser    ProviderKind = 1 // community (individual user) broadcast
	ProviderChannel ProviderKind = 2
	ProviderCompany ProviderKind = 3 // official broadcast
)

// String returns the string representation of the provider kind
func (k ProviderKind) String() string {
	switch k {
	case ProviderUser:
		return "user"
	case ProviderChannel:
		return "channel"
	case ProviderCompany:
		return "company"
	default:
		return "unknown"
	}
}

// Status is the broadcast state of a program. Records written for pages that
// could not be fetched carry the HTTP status code instead (e.g. 404).
type Status int

const (
	StatusReserved Status = 10
	StatusOnAir    Status = 20
	StatusEnded    Status = 30
)

// statusNames maps the status names found in page payloads to their codes
var statusNames = map[string]Status{
	"RESERVED": StatusReserved,
	"ON_AIR":   StatusOnAir,
	"ENDED":    StatusEnded,
}

// ParseStatus converts a payload status name into a Status
func ParseStatus(name string) (Status, error) {
	status, ok := statusNames[name]
	if !ok {
		return 0, &UnknownStatusError{Value: name}
	}
	return status, nil
}

// String returns the payload name of the status, or the numeric code for
// HTTP-error records
func (s Status) String() string {
	for name, status := range statusNames {
		if status == s {
			return name
		}
	}
	return strconv.Itoa(int(s))
}

// StreamRecord is the normalized output of one successful page extraction.
// It is built only through NewStreamRecord so Duration always equals
// EndTime - StartTime.
type StreamRecord struct {
	ExternalID         string // numeric program id without the "lv" prefix
	ProviderKind       ProviderKind
	Title              string
	StartTime          time.Time // UTC
	EndTime            time.Time // UTC
	Duration           time.Duration
	Status             Status
	StreamerExternalID int64
	StreamerName       string
	ChannelExternalID  int64
	ChannelName        string
	CompanyName        string
}

// StreamRecordInput carries the fields of a StreamRecord except the derived duration
type StreamRecordInput struct {
	ExternalID         string
	ProviderKind       ProviderKind
	Title              string
	StartTime          time.Time
	EndTime            time.Time
	Status             Status
	StreamerExternalID int64
	StreamerName       string
	ChannelExternalID  int64
	ChannelName        string
	CompanyName        string
}

// NewStreamRecord builds a StreamRecord, normalizing times to UTC and deriving
// the duration. It fails when the end time is before the start time.
func NewStreamRecord(in StreamRecordInput) (StreamRecord, error) {
	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if end.Before(start) {
		return StreamRecord{}, &InvalidTimeRangeError{Start: start, End: end}
	}

	return StreamRecord{
		ExternalID:         in.ExternalID,
		ProviderKind:       in.ProviderKind,
		Title:              in.Title,
		StartTime:          start,
		EndTime:            end,
		Duration:           end.Sub(start),
		Status:             in.Status,
		StreamerExternalID: in.StreamerExternalID,
		StreamerName:       in.StreamerName,
		ChannelExternalID:  in.ChannelExternalID,
		ChannelName:        in.ChannelName,
		CompanyName:        in.CompanyName,
	}, nil
}

// Streamer is one observed name of a broadcaster. Rows are append-only: a
// rename adds a new row and the latest RecordedAt holds the current name.
type Streamer struct {
	ID         string // Unique internal identifier
	ExternalID int64  // Platform user id
	Name       string // Display name at RecordedAt
	RecordedAt time.Time
}

// Channel represents a channel or official broadcaster, one row per external id
type Channel struct {
	ID          string
	ExternalID  int64
	Name        string
	CompanyName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Streaming represents a persisted broadcast program, one row per external id
type Streaming struct {
	ID           string
	ExternalID   int64
	ProviderKind ProviderKind
	Title        string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	Status       Status
	StreamerID   string // Streamer row active when this row was written
	ChannelID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Outcome tells how a single-id run finished when it did not fail
type Outcome int

const (
	// OutcomeStored means the page was extracted and persisted
	OutcomeStored Outcome = iota
	// OutcomeRecovered means the page returned a non-200 status and a
	// placeholder record was persisted instead
	OutcomeRecovered
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	if o == OutcomeRecovered {
		return "recovered"
	}
	return "stored"
}
