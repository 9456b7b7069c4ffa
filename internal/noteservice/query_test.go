package noteservice_test

import (
	"context"
	"math"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/noteservice"
	"github.com/starford/memo/internal/storage"
	"github.com/starford/memo/internal/testutil"
)

func seeded(t *testing.T) (*noteservice.Service, storage.Provider, []models.Note) {
	t.Helper()
	svc, store := testutil.TestService(t)
	notes := []models.Note{
		note(1, models.StatusUndone, "2024-01-01", "xxabcxx"),
		note(2, models.StatusDone, "2024-01-02", "xyz"),
		note(3, models.StatusPostponed, "2024-01-01", "Meeting with ABC"),
		note(4, models.StatusUndone, "2024-01-03", "meet abc later"),
	}
	testutil.Seed(t, store, notes...)
	return svc, store, notes
}

func ids(notes []models.Note) []int {
	out := make([]int, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestListAll(t *testing.T) {
	svc, _, notes := seeded(t)
	got, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(notes, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestListLatestSkipsFirstNPlusOne(t *testing.T) {
	svc, _, _ := seeded(t)
	ctx := context.Background()
	cases := []struct {
		n    int
		want []int
	}{
		{0, []int{2, 3, 4}},
		{1, []int{3, 4}},
		{2, []int{4}},
		{3, []int{}},
		{10, []int{}},
		{math.MaxInt, []int{}},
	}
	for _, c := range cases {
		got, err := svc.ListLatest(ctx, c.n)
		if err != nil {
			t.Fatalf("ListLatest(%d): %v", c.n, err)
		}
		if diff := cmp.Diff(c.want, ids(got)); diff != "" {
			t.Errorf("ListLatest(%d) (-want +got):\n%s", c.n, diff)
		}
	}
	if _, err := svc.ListLatest(ctx, -1); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("ListLatest(-1): err = %v", err)
	}
}

func TestGroupByDateFirstSeenOrder(t *testing.T) {
	svc, store := testutil.TestService(t)
	rec0 := note(1, models.StatusUndone, "2024-01-01", "a")
	rec1 := note(2, models.StatusUndone, "2024-01-02", "b")
	rec2 := note(3, models.StatusUndone, "2024-01-01", "c")
	testutil.Seed(t, store, rec0, rec1, rec2)

	got, err := svc.GroupByDate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []models.DateGroup{
		{Date: "2024-01-01", Notes: []models.Note{rec0, rec2}},
		{Date: "2024-01-02", Notes: []models.Note{rec1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupByDateEmpty(t *testing.T) {
	svc, _ := testutil.TestService(t)
	got, err := svc.GroupByDate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("groups = %+v", got)
	}
}

func TestFilterByStatus(t *testing.T) {
	svc, _, _ := seeded(t)
	ctx := context.Background()

	undone, err := svc.FilterByStatus(ctx, models.StatusUndone, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 4}, ids(undone)); diff != "" {
		t.Errorf("undone (-want +got):\n%s", diff)
	}

	notPostponed, err := svc.FilterByStatus(ctx, models.StatusPostponed, true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2, 4}, ids(notPostponed)); diff != "" {
		t.Errorf("unpostponed (-want +got):\n%s", diff)
	}

	if _, err := svc.FilterByStatus(ctx, models.Status(-1), false); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("invalid status: err = %v", err)
	}
}

func TestSearchSubstring(t *testing.T) {
	svc, _, _ := seeded(t)
	ctx := context.Background()

	got, err := svc.SearchSubstring(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 4}, ids(got)); diff != "" {
		t.Errorf("abc (-want +got):\n%s", diff)
	}

	byDate, err := svc.SearchSubstring(ctx, "01-01")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 3}, ids(byDate)); diff != "" {
		t.Errorf("date search (-want +got):\n%s", diff)
	}
}

func TestSearchPatternIsPrefixAnchoredAndCaseInsensitive(t *testing.T) {
	svc, _, _ := seeded(t)
	ctx := context.Background()

	got, err := svc.SearchPattern(ctx, "meet")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{3, 4}, ids(got)); diff != "" {
		t.Errorf("meet (-want +got):\n%s", diff)
	}

	// "abc" appears inside contents but never at the start.
	none, err := svc.SearchPattern(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("abc matched %v", ids(none))
	}

	re, err := svc.SearchPattern(ctx, `x+[a-c]{3}`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1}, ids(re)); diff != "" {
		t.Errorf("regex (-want +got):\n%s", diff)
	}
}

func TestSearchPatternInvalid(t *testing.T) {
	svc, _, _ := seeded(t)
	for _, p := range []string{"(", "a)|(b"} {
		if _, err := svc.SearchPattern(context.Background(), p); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("SearchPattern(%q): err = %v", p, err)
		}
	}
}

func TestQueriesDoNotWrite(t *testing.T) {
	svc, store, _ := seeded(t)
	ctx := context.Background()
	before, _ := store.Checksum()

	_, _ = svc.ListAll(ctx)
	_, _ = svc.ListLatest(ctx, 1)
	_, _ = svc.GroupByDate(ctx)
	_, _ = svc.FilterByStatus(ctx, models.StatusDone, false)
	_, _ = svc.SearchSubstring(ctx, "x")
	_, _ = svc.SearchPattern(ctx, "x")

	if after, _ := store.Checksum(); after != before {
		t.Error("a query rewrote the file")
	}
}

func TestQueryOnCorruptFile(t *testing.T) {
	svc, store := testutil.TestService(t)
	testutil.Seed(t, store, note(1, models.StatusUndone, "2024-01-01", "ok"))
	if err := appendRaw(store.Path(), "garbage\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ListAll(context.Background()); !errors.Is(err, apperr.ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}
