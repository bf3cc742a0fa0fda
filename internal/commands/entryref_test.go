package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"notifier/internal/board"
	"notifier/internal/testutil"
)

func TestParseEntryRef(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want EntryRef
	}{
		{"numeric", []string{"5"}, EntryRef{Section: SectionPending, Num: 5}},
		{"explicit pending", []string{"p2"}, EntryRef{Section: SectionPending, Num: 2}},
		{"completed", []string{"c12"}, EntryRef{Section: SectionCompleted, Num: 12}},
		{"completed uppercase", []string{"C3"}, EntryRef{Section: SectionCompleted, Num: 3}},
		{"separated", []string{"c", "3"}, EntryRef{Section: SectionCompleted, Num: 3}},
		{"key prefix", []string{"5f0c"}, EntryRef{Section: SectionKey, Key: "5f0c"}},
		{"full key", []string{"5f0c6a1e-1111-4a4a-9b9b-000000000001"}, EntryRef{Section: SectionKey, Key: "5f0c6a1e-1111-4a4a-9b9b-000000000001"}},
		{"extra args ignored", []string{"4", "extra"}, EntryRef{Section: SectionPending, Num: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntryRef(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseEntryRef_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no args", nil, "entry reference required"},
		{"letter only", []string{"c"}, "entry reference required"},
		{"letter then word", []string{"c", "x"}, "invalid entry reference: c"},
		{"short key", []string{"abc"}, "invalid entry reference: abc"},
		{"punctuation", []string{"ab/cd"}, "invalid entry reference: ab/cd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntryRef(tt.args)
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("expected error %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolveEntry(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("aaaa-0001", "First", false, 0)
	svc.AddItem("aaaa-0002", "Second", false, time.Minute)
	svc.AddItem("bbbb-0003", "Done one", true, 2*time.Minute)

	b := board.New(svc)
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ref     EntryRef
		wantKey string
		wantErr error
	}{
		{EntryRef{Section: SectionPending, Num: 2}, "aaaa-0002", nil},
		{EntryRef{Section: SectionCompleted, Num: 1}, "bbbb-0003", nil},
		{EntryRef{Section: SectionKey, Key: "BBBB"}, "bbbb-0003", nil},
		{EntryRef{Section: SectionPending, Num: 3}, "", ErrOutOfRange},
		{EntryRef{Section: SectionCompleted, Num: 0}, "", ErrOutOfRange},
		{EntryRef{Section: SectionKey, Key: "cccc"}, "", ErrUnknownEntry},
		{EntryRef{Section: SectionKey, Key: "aaaa"}, "", board.ErrAmbiguousKey},
	}
	for _, tt := range tests {
		t.Run(tt.ref.String(), func(t *testing.T) {
			e, err := ResolveEntry(b, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Key != tt.wantKey {
				t.Errorf("expected %s, got %s", tt.wantKey, e.Key)
			}
		})
	}
}
