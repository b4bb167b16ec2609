package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewStreamRecord_DerivesDuration(t *testing.T) {
	start := time.Unix(1737936000, 0)
	end := time.Unix(1737950400, 0)

	record, err := NewStreamRecord(StreamRecordInput{
		ExternalID: "346883570",
		StartTime:  start,
		EndTime:    end,
		Status:     StatusEnded,
	})
	if err != nil {
		t.Fatalf("NewStreamRecord() failed: %v", err)
	}

	if record.Duration != 4*time.Hour {
		t.Errorf("Duration = %v, want 4h0m0s", record.Duration)
	}
	if record.StartTime.Location() != time.UTC || record.EndTime.Location() != time.UTC {
		t.Error("expected start and end times in UTC")
	}
}

func TestNewStreamRecord_ZeroDuration(t *testing.T) {
	at := time.Date(2007, 12, 25, 0, 0, 0, 0, time.UTC)

	record, err := NewStreamRecord(StreamRecordInput{StartTime: at, EndTime: at})
	if err != nil {
		t.Fatalf("NewStreamRecord() failed: %v", err)
	}
	if record.Duration != 0 {
		t.Errorf("Duration = %v, want 0", record.Duration)
	}
}

func TestNewStreamRecord_EndBeforeStart(t *testing.T) {
	_, err := NewStreamRecord(StreamRecordInput{
		StartTime: time.Unix(2000, 0),
		EndTime:   time.Unix(1000, 0),
	})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}

	var rangeErr *InvalidTimeRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected *InvalidTimeRangeError, got %T", err)
	}
	if !rangeErr.End.Before(rangeErr.Start) {
		t.Error("expected error to carry the offending instants")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{name: "reserved", input: "RESERVED", want: StatusReserved},
		{name: "on air", input: "ON_AIR", want: StatusOnAir},
		{name: "ended", input: "ENDED", want: StatusEnded},
		{name: "lower case is unknown", input: "ended", wantErr: true},
		{name: "unknown", input: "UNKNOWN_STATUS", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStatus) {
					t.Errorf("ParseStatus(%q) error = %v, want ErrUnknownStatus", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatus_String(t *testing.T) {
	if StatusOnAir.String() != "ON_AIR" {
		t.Errorf("StatusOnAir.String() = %s, want ON_AIR", StatusOnAir.String())
	}
	if Status(404).String() != "404" {
		t.Errorf("Status(404).String() = %s, want 404", Status(404).String())
	}
}

func TestErrors_IdentifyOffendingValue(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{name: "missing field", err: &MissingFieldError{Field: "program.beginTime"}, sentinel: ErrMissingField, contains: "beginTime"},
		{name: "unknown status", err: &UnknownStatusError{Value: "PAUSED"}, sentinel: ErrUnknownStatus, contains: "PAUSED"},
		{name: "unknown provider", err: &UnknownProviderTypeError{ProgramID: "1", Value: "radio"}, sentinel: ErrUnknownProviderType, contains: "radio"},
		{name: "invalid range", err: &InvalidRangeError{Start: 300, End: 200}, sentinel: ErrInvalidRange, contains: "start=300"},
		{name: "persistence", err: &PersistenceError{Stage: "channel", ExternalID: "1", Err: errors.New("disk full")}, sentinel: ErrPersistence, contains: "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%T, sentinel) = false", tt.err)
			}
			if msg := tt.err.Error(); !strings.Contains(msg, tt.contains) {
				t.Errorf("error %q does not mention %q", msg, tt.contains)
			}
		})
	}
}
