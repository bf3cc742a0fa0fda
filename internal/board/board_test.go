package board_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"notifier/internal/board"
	"notifier/internal/logging"
	"notifier/internal/service"
	"notifier/internal/testutil"
)

var fixedNow = time.Date(2023, 6, 2, 15, 4, 5, 0, time.UTC)

func newBoard(t *testing.T, svc *testutil.FakeService, opts ...board.Option) *board.Board {
	t.Helper()
	n := 0
	base := []board.Option{
		board.WithClock(func() time.Time { return fixedNow }),
		board.WithKeyGenerator(func() string {
			n++
			return "key-" + string(rune('0'+n))
		}),
	}
	b := board.New(svc, append(base, opts...)...)
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return b
}

func titles(entries []service.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Value.Title
	}
	return out
}

func TestPendingAndCompleted_FilteredAndSortedByCreated(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("c", "Third", false, 3*time.Hour)
	svc.AddItem("a", "First", false, 1*time.Hour)
	svc.AddItem("d", "Done late", true, 4*time.Hour)
	svc.AddItem("b", "Done early", true, 2*time.Hour)
	svc.AddItem("e", "Second", false, 2*time.Hour)

	b := newBoard(t, svc)

	got := strings.Join(titles(b.Pending()), ",")
	if got != "First,Second,Third" {
		t.Errorf("unexpected pending order: %s", got)
	}
	got = strings.Join(titles(b.Completed()), ",")
	if got != "Done early,Done late" {
		t.Errorf("unexpected completed order: %s", got)
	}
}

func TestSortByCreated_TieBrokenByKey(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("zz", "Z", false, 0)
	svc.AddItem("aa", "A", false, 0)
	svc.AddEntry("nn", service.Item{Title: "No created"})

	b := newBoard(t, svc)
	got := strings.Join(titles(b.Pending()), ",")
	if got != "No created,A,Z" {
		t.Errorf("unexpected order: %s", got)
	}
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("a", "Keep me", false, 0)
	b := newBoard(t, svc)

	svc.ListErr = errors.New("boom")
	if err := b.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if len(b.Entries()) != 1 {
		t.Errorf("expected snapshot to survive, got %d entries", len(b.Entries()))
	}
	if !b.FetchedAt().Equal(fixedNow) {
		t.Errorf("expected fetchedAt from first refresh, got %v", b.FetchedAt())
	}
}

func TestAdd_CreatesAndRefetches(t *testing.T) {
	svc := testutil.NewFakeService()
	b := newBoard(t, svc)
	listsBefore := svc.ListCalls

	entry, err := b.Add(context.Background(), board.Draft{
		Title:       "  Buy milk  ",
		Description: "2 litres",
		DueDate:     "2023-06-02",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Key != "key-1" || entry.Value.ID != "key-1" {
		t.Errorf("expected generated key on entry and id, got %q/%q", entry.Key, entry.Value.ID)
	}
	if entry.Value.Title != "Buy milk" {
		t.Errorf("expected trimmed title, got %q", entry.Value.Title)
	}
	if !entry.Value.Created.Equal(fixedNow) || !entry.Value.LastUpdated.Equal(fixedNow) {
		t.Errorf("expected created/lastUpdated = now, got %v/%v", entry.Value.Created, entry.Value.LastUpdated)
	}
	stored, ok := svc.Item("key-1")
	if !ok || stored.Description != "2 litres" {
		t.Errorf("expected entry in store, got %+v (ok=%v)", stored, ok)
	}
	if svc.ListCalls != listsBefore+1 {
		t.Errorf("expected one refetch, got %d", svc.ListCalls-listsBefore)
	}
	if len(b.Pending()) != 1 {
		t.Errorf("expected 1 pending entry after refetch, got %d", len(b.Pending()))
	}
}

func TestAdd_Validation(t *testing.T) {
	svc := testutil.NewFakeService()
	b := newBoard(t, svc)

	if _, err := b.Add(context.Background(), board.Draft{Title: "   "}); !errors.Is(err, board.ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := b.Add(context.Background(), board.Draft{Title: "x", DueDate: "02/06/2023"}); !errors.Is(err, board.ErrInvalidDueDate) {
		t.Errorf("expected ErrInvalidDueDate, got %v", err)
	}
	if svc.CreateCalls != 0 {
		t.Errorf("validation failures must not reach the store, got %d creates", svc.CreateCalls)
	}
}

func TestAdd_PushFailureStillRefetches(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("a", "Existing", false, 0)
	b := newBoard(t, svc)
	listsBefore := svc.ListCalls
	svc.CreateErr = errors.New("store down")

	_, err := b.Add(context.Background(), board.Draft{Title: "Lost"})
	if err == nil || err.Error() != "store down" {
		t.Fatalf("expected push error, got %v", err)
	}
	if svc.ListCalls != listsBefore+1 {
		t.Errorf("expected refetch after failed push")
	}
	if got := strings.Join(titles(b.Pending()), ","); got != "Existing" {
		t.Errorf("failed add must not appear, got %s", got)
	}
}

func TestAdd_RefetchFailureKeepsOptimisticEntry(t *testing.T) {
	svc := testutil.NewFakeService()
	var logBuf bytes.Buffer
	b := newBoard(t, svc, board.WithLogger(logging.New(&logBuf, logging.Options{})))
	svc.ListErr = errors.New("list down")

	if _, err := b.Add(context.Background(), board.Draft{Title: "Optimistic"}); err != nil {
		t.Fatalf("push succeeded, expected nil error, got %v", err)
	}
	if got := strings.Join(titles(b.Pending()), ","); got != "Optimistic" {
		t.Errorf("expected optimistic entry in snapshot, got %q", got)
	}
	if !strings.Contains(logBuf.String(), "refetch failed") {
		t.Errorf("expected refetch warning in log, got %q", logBuf.String())
	}
}

func TestComplete_AndRevive(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("a", "Walk dog", false, 0)
	b := newBoard(t, svc)
	ctx := context.Background()

	if err := b.Complete(ctx, "a"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	item, _ := svc.Item("a")
	if !item.Completed {
		t.Error("expected entry completed in store")
	}
	if item.Title != "Walk dog" || !item.Created.Equal(testutil.BaseTime) {
		t.Errorf("complete must keep the other fields, got %+v", item)
	}
	if !item.LastUpdated.Equal(fixedNow) {
		t.Errorf("expected lastUpdated bumped, got %v", item.LastUpdated)
	}
	if len(b.Completed()) != 1 || len(b.Pending()) != 0 {
		t.Errorf("expected entry to move to completed")
	}

	if err := b.Complete(ctx, "a"); !errors.Is(err, board.ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}

	if err := b.Revive(ctx, "a"); err != nil {
		t.Fatalf("revive: %v", err)
	}
	item, _ = svc.Item("a")
	if item.Completed {
		t.Error("expected entry pending again")
	}
	if err := b.Revive(ctx, "a"); !errors.Is(err, board.ErrNotCompleted) {
		t.Errorf("expected ErrNotCompleted, got %v", err)
	}
}

func TestMutations_UnknownKey(t *testing.T) {
	svc := testutil.NewFakeService()
	b := newBoard(t, svc)
	ctx := context.Background()
	title := "x"

	checks := map[string]error{
		"complete": b.Complete(ctx, "nope"),
		"revive":   b.Revive(ctx, "nope"),
		"delete":   b.Delete(ctx, "nope"),
	}
	_, checks["edit"] = b.Edit(ctx, "nope", board.Patch{Title: &title})
	for name, err := range checks {
		if !errors.Is(err, service.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
	if svc.UpdateCalls+svc.DeleteCalls != 0 {
		t.Error("unknown keys must not reach the store")
	}
}

func TestEdit(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddEntry("a", service.Item{Title: "Old", Description: "keep", DueDate: "2023-06-01", Created: testutil.BaseTime})
	b := newBoard(t, svc)
	ctx := context.Background()

	newTitle := "New"
	none := ""
	entry, err := b.Edit(ctx, "a", board.Patch{Title: &newTitle, DueDate: &none})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if entry.Value.Title != "New" || entry.Value.Description != "keep" || entry.Value.DueDate != "" {
		t.Errorf("unexpected edited value %+v", entry.Value)
	}

	if _, err := b.Edit(ctx, "a", board.Patch{}); !errors.Is(err, board.ErrEmptyPatch) {
		t.Errorf("expected ErrEmptyPatch, got %v", err)
	}
	blank := " "
	if _, err := b.Edit(ctx, "a", board.Patch{Title: &blank}); !errors.Is(err, board.ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", err)
	}
	bad := "tomorrow"
	if _, err := b.Edit(ctx, "a", board.Patch{DueDate: &bad}); !errors.Is(err, board.ErrInvalidDueDate) {
		t.Errorf("expected ErrInvalidDueDate, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("a", "Gone", false, 0)
	svc.AddItem("b", "Stays", false, time.Hour)
	b := newBoard(t, svc)

	if err := b.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if svc.Len() != 1 {
		t.Errorf("expected 1 entry left in store, got %d", svc.Len())
	}
	if got := strings.Join(titles(b.Pending()), ","); got != "Stays" {
		t.Errorf("unexpected pending after delete: %s", got)
	}
}

func TestDelete_FailureRefetchesAndKeepsEntry(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("a", "Sticky", false, 0)
	b := newBoard(t, svc)
	svc.DeleteErr = service.ErrUnauthorized
	listsBefore := svc.ListCalls

	if err := b.Delete(context.Background(), "a"); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if svc.ListCalls != listsBefore+1 {
		t.Error("expected refetch after failed delete")
	}
	if len(b.Pending()) != 1 {
		t.Error("entry must remain after failed delete")
	}
}

func TestPurgeCompleted(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("a", "Open", false, 0)
	svc.AddItem("b", "Done one", true, time.Hour)
	svc.AddItem("c", "Done two", true, 2*time.Hour)
	b := newBoard(t, svc)
	listsBefore := svc.ListCalls

	n, err := b.PurgeCompleted(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 2 || svc.Len() != 1 {
		t.Errorf("expected 2 deleted and 1 left, got %d deleted %d left", n, svc.Len())
	}
	if len(b.Completed()) != 0 || svc.ListCalls != listsBefore+1 {
		t.Errorf("expected a single refetch with no completed entries left")
	}
}

func TestPurgeCompleted_StopsOnFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("b", "Done", true, 0)
	b := newBoard(t, svc)
	svc.DeleteErr = errors.New("boom")

	n, err := b.PurgeCompleted(context.Background())
	if err == nil || !strings.Contains(err.Error(), "delete b: boom") {
		t.Fatalf("unexpected error %v", err)
	}
	if n != 0 || len(b.Completed()) != 1 {
		t.Errorf("expected nothing purged, got %d", n)
	}
}

func TestFindPrefix(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("3f2a9c1e-0000", "One", false, 0)
	svc.AddItem("3f2b0000-0000", "Two", false, 0)
	b := newBoard(t, svc)

	e, err := b.FindPrefix("3F2A")
	if err != nil || e.Value.Title != "One" {
		t.Errorf("expected One, got %+v (%v)", e, err)
	}
	if _, err := b.FindPrefix("3f2"); !errors.Is(err, board.ErrAmbiguousKey) {
		t.Errorf("expected ErrAmbiguousKey, got %v", err)
	}
	if _, err := b.FindPrefix("ffff"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	svc := testutil.NewFakeService()
	for i := 0; i < 12; i++ {
		svc.AddItem("p"+string(rune('a'+i)), "Pending "+string(rune('A'+i)), false, time.Duration(i)*time.Minute)
	}
	svc.AddItem("done", "Done", true, 0)
	svc.AddEntry("due", service.Item{Title: "Due today", DueDate: "2023-06-02", Created: testutil.BaseTime.Add(time.Hour)})
	b := newBoard(t, svc)

	d := b.Dashboard(fixedNow, 2, 1, 10)
	if d.Pending.TotalItems != 13 || d.Pending.TotalPages != 2 {
		t.Errorf("unexpected pending page %+v", d.Pending)
	}
	if len(d.Pending.Items) != 3 || d.Pending.Offset != 10 {
		t.Errorf("expected 3 items on page 2 at offset 10, got %d at %d", len(d.Pending.Items), d.Pending.Offset)
	}
	if d.Completed.TotalItems != 1 {
		t.Errorf("expected 1 completed, got %d", d.Completed.TotalItems)
	}
	if len(d.DueToday) != 1 || d.DueToday[0].Key != "due" {
		t.Errorf("expected due-today entry, got %v", titles(d.DueToday))
	}
}

func TestImport(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("existing", "Old title", false, 0)
	b := newBoard(t, svc)
	listsBefore := svc.ListCalls

	res, err := b.Import(context.Background(), []service.Entry{
		{Key: "existing", Value: service.Item{Title: "New title"}},
		{Value: service.Item{Title: "Fresh"}},
		{Key: "given", Value: service.Item{Title: "Keyed", Completed: true}},
	}, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res != (board.ImportResult{Created: 2, Skipped: 1}) {
		t.Errorf("unexpected result %+v", res)
	}
	if item, _ := svc.Item("existing"); item.Title != "Old title" {
		t.Errorf("existing entry must be skipped without --replace, got %q", item.Title)
	}
	if item, ok := svc.Item("key-1"); !ok || !item.Created.Equal(fixedNow) || item.ID != "key-1" {
		t.Errorf("expected generated key with created=now, got %+v (ok=%v)", item, ok)
	}
	if svc.ListCalls != listsBefore+1 {
		t.Errorf("expected a single refetch, got %d", svc.ListCalls-listsBefore)
	}

	res, err = b.Import(context.Background(), []service.Entry{
		{Key: "existing", Value: service.Item{Title: "New title"}},
	}, true)
	if err != nil {
		t.Fatalf("import replace: %v", err)
	}
	if res.Updated != 1 {
		t.Errorf("expected 1 update, got %+v", res)
	}
	if item, _ := svc.Item("existing"); item.Title != "New title" {
		t.Errorf("expected replaced title, got %q", item.Title)
	}
}

func TestImport_StopsOnFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	b := newBoard(t, svc)
	svc.CreateErr = service.ErrUnauthorized

	res, err := b.Import(context.Background(), []service.Entry{
		{Value: service.Item{Title: "A"}},
		{Value: service.Item{Title: "B"}},
	}, false)
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if res.Created != 0 || svc.CreateCalls != 1 {
		t.Errorf("expected import to stop at first failure, got %+v after %d calls", res, svc.CreateCalls)
	}
}
