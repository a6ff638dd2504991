package models

import (
	"errors"
	"testing"
)

func TestValidateTransition_Legal(t *testing.T) {
	legal := []struct{ from, to SyncStatus }{
		{SyncPending, SyncRunning},
		{SyncRunning, SyncCompleted},
		{SyncRunning, SyncFailed},
		{SyncRunning, SyncPartial},
	}
	for _, tc := range legal {
		if err := ValidateTransition(tc.from, tc.to); err != nil {
			t.Errorf("ValidateTransition(%s, %s): unexpected error %v", tc.from, tc.to, err)
		}
	}
}

func TestValidateTransition_Illegal(t *testing.T) {
	illegal := []struct{ from, to SyncStatus }{
		{SyncPending, SyncCompleted}, // must run first
		{SyncCompleted, SyncRunning}, // terminal states are final
		{SyncFailed, SyncRunning},
		{SyncPartial, SyncRunning},
		{SyncRunning, SyncRunning},
		{SyncRunning, SyncPending},
		{SyncCompleted, SyncFailed},
	}
	for _, tc := range illegal {
		err := ValidateTransition(tc.from, tc.to)
		if err == nil {
			t.Errorf("ValidateTransition(%s, %s): expected error, got nil", tc.from, tc.to)
			continue
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("ValidateTransition(%s, %s): error %v is not ErrInvalidTransition", tc.from, tc.to, err)
		}
	}
}

func TestSyncStatus_IsTerminal(t *testing.T) {
	for _, s := range []SyncStatus{SyncCompleted, SyncFailed, SyncPartial} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []SyncStatus{SyncPending, SyncRunning} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestHourWindow(t *testing.T) {
	in := timeMustParse(t, "2025-03-07T14:37:22Z")
	got := HourWindow(in)
	want := timeMustParse(t, "2025-03-07T14:00:00Z")
	if !got.Equal(want) {
		t.Errorf("HourWindow: got %v, want %v", got, want)
	}
}

func TestDayOf(t *testing.T) {
	in := timeMustParse(t, "2025-03-07T14:37:22Z")
	got := DayOf(in)
	want := timeMustParse(t, "2025-03-07T00:00:00Z")
	if !got.Equal(want) {
		t.Errorf("DayOf: got %v, want %v", got, want)
	}
}
