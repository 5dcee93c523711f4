package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fixedNow is a Monday. The lead window runs through the following Monday.
var fixedNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)

type fakeSource struct {
	mu      sync.Mutex
	entries map[string][]BlockEntry
	errs    map[string]error
	onFetch func(date string)
}

func (f *fakeSource) BlockDates(ctx context.Context, date string) ([]BlockEntry, error) {
	if f.onFetch != nil {
		f.onFetch(date)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[date]; err != nil {
		return nil, err
	}
	return f.entries[date], nil
}

func newTestEngine(src *fakeSource) *Engine {
	eng := NewEngine(src, nil)
	eng.now = func() time.Time { return fixedNow }
	return eng
}

func TestIsDateSelectableLeadTimeAndPast(t *testing.T) {
	eng := newTestEngine(&fakeSource{})

	cases := []struct {
		date string
		want bool
	}{
		{"2025-06-01", false}, // past
		{"2025-06-02", false}, // today, inside lead window
		{"2025-06-09", false}, // day 7, still inside lead window
		{"2025-06-10", true},  // first bookable weekday
		{"2025-06-14", false}, // saturday beyond lead window
		{"2025-06-15", false}, // sunday beyond lead window
		{"2025-06-16", true},  // monday beyond lead window
	}
	for _, tc := range cases {
		day, err := ParseDate(tc.date)
		if err != nil {
			t.Fatalf("ParseDate(%s): %v", tc.date, err)
		}
		if got := eng.IsDateSelectable(day); got != tc.want {
			t.Errorf("IsDateSelectable(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestIsDateSelectableUsesAvailabilityMap(t *testing.T) {
	src := &fakeSource{entries: map[string][]BlockEntry{
		"2025-06-10": {{Date: "2025-06-10", Time: "8-9", MaxSlots: 0}},
	}}
	eng := newTestEngine(src)

	start, _ := ParseDate("2025-06-10")
	end, _ := ParseDate("2025-06-11")
	if err := eng.LoadAvailability(context.Background(), start, end); err != nil {
		t.Fatalf("LoadAvailability: %v", err)
	}

	blocked, _ := ParseDate("2025-06-10")
	if eng.IsDateSelectable(blocked) {
		t.Error("date with zero total capacity should not be selectable")
	}
	open, _ := ParseDate("2025-06-11")
	if !eng.IsDateSelectable(open) {
		t.Error("weekday with no block entries should be selectable")
	}
}

func TestLoadAvailabilityTotals(t *testing.T) {
	src := &fakeSource{
		entries: map[string][]BlockEntry{
			"2025-06-10": {
				{Date: "2025-06-10", Time: "8-9", MaxSlots: 2},
				{Date: "2025-06-10", Time: "9-10", MaxSlots: 1},
			},
		},
	}
	eng := newTestEngine(src)

	start, _ := ParseDate("2025-06-10")
	end, _ := ParseDate("2025-06-14")
	if err := eng.LoadAvailability(context.Background(), start, end); err != nil {
		t.Fatalf("LoadAvailability: %v", err)
	}

	avail := eng.Availability()
	if got := avail["2025-06-10"]; got != 3 {
		t.Errorf("overridden date total = %d, want 3", got)
	}
	if got := avail["2025-06-11"]; got != 6 {
		t.Errorf("default weekday total = %d, want 6", got)
	}
	if got := avail["2025-06-14"]; got != 0 {
		t.Errorf("saturday total = %d, want 0", got)
	}
}

func TestLoadAvailabilityFetchFailureIsConservative(t *testing.T) {
	src := &fakeSource{errs: map[string]error{
		"2025-06-11": errors.New("connection refused"),
	}}
	eng := newTestEngine(src)

	start, _ := ParseDate("2025-06-10")
	end, _ := ParseDate("2025-06-11")
	err := eng.LoadAvailability(context.Background(), start, end)
	if err == nil {
		t.Fatal("expected an error when a date fails to load")
	}

	avail := eng.Availability()
	if got := avail["2025-06-11"]; got != 0 {
		t.Errorf("failed date total = %d, want 0", got)
	}
	failed, _ := ParseDate("2025-06-11")
	if eng.IsDateSelectable(failed) {
		t.Error("date whose fetch failed must not be selectable")
	}
}

func TestSelectDateBuildsSlotTable(t *testing.T) {
	src := &fakeSource{entries: map[string][]BlockEntry{
		"2025-06-10": {{Date: "2025-06-10", Time: "8-9", MaxSlots: 3}},
	}}
	eng := newTestEngine(src)

	day, _ := ParseDate("2025-06-10")
	if err := eng.SelectDate(context.Background(), day); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	if eng.State() != DateSelected {
		t.Fatalf("state = %v, want %v", eng.State(), DateSelected)
	}

	slots := eng.Slots()
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(slots))
	}
	for _, slot := range slots {
		want := 6
		if slot.Slot == "08-09" {
			want = 3
		}
		if slot.Capacity != want {
			t.Errorf("slot %s capacity = %d, want %d", slot.Slot, slot.Capacity, want)
		}
	}
}

func TestSelectDateMatchesHumanReadableTimes(t *testing.T) {
	src := &fakeSource{entries: map[string][]BlockEntry{
		"2025-06-10": {{Date: "2025-06-10", Time: "8:00AM-9:00AM", MaxSlots: 1}},
	}}
	eng := newTestEngine(src)

	day, _ := ParseDate("2025-06-10")
	if err := eng.SelectDate(context.Background(), day); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	for _, slot := range eng.Slots() {
		if slot.Slot == "08-09" && slot.Capacity != 1 {
			t.Errorf("human-form block entry not matched, capacity = %d", slot.Capacity)
		}
	}
}

func TestSelectDateSaturdayAllSlotsClosed(t *testing.T) {
	eng := newTestEngine(&fakeSource{})

	saturday, _ := ParseDate("2025-06-14")
	if err := eng.SelectDate(context.Background(), saturday); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	for _, slot := range eng.Slots() {
		if slot.Capacity != 0 {
			t.Errorf("saturday slot %s capacity = %d, want 0", slot.Slot, slot.Capacity)
		}
	}
	if err := eng.SelectSlot("08-09"); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("SelectSlot on closed day = %v, want ErrSlotUnavailable", err)
	}
	if eng.SelectedSlot() != "" {
		t.Errorf("selectedSlot = %q after rejected selection", eng.SelectedSlot())
	}
}

func TestSelectSlotZeroCapacityKeepsPrevious(t *testing.T) {
	src := &fakeSource{entries: map[string][]BlockEntry{
		"2025-06-10": {{Date: "2025-06-10", Time: "9-10", MaxSlots: 0}},
	}}
	eng := newTestEngine(src)

	day, _ := ParseDate("2025-06-10")
	if err := eng.SelectDate(context.Background(), day); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	if err := eng.SelectSlot("08-09"); err != nil {
		t.Fatalf("SelectSlot: %v", err)
	}
	if err := eng.SelectSlot("09-10"); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("SelectSlot zero-capacity = %v, want ErrSlotUnavailable", err)
	}
	if eng.SelectedSlot() != "08-09" {
		t.Errorf("selectedSlot = %q, want previous 08-09", eng.SelectedSlot())
	}
	if eng.State() != SlotSelected {
		t.Errorf("state = %v, want %v", eng.State(), SlotSelected)
	}
}

func TestSelectDateClearsSlotEvenOnFetchError(t *testing.T) {
	src := &fakeSource{
		errs: map[string]error{"2025-06-11": errors.New("timeout")},
	}
	eng := newTestEngine(src)

	first, _ := ParseDate("2025-06-10")
	if err := eng.SelectDate(context.Background(), first); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	if err := eng.SelectSlot("10-11"); err != nil {
		t.Fatalf("SelectSlot: %v", err)
	}

	second, _ := ParseDate("2025-06-11")
	if err := eng.SelectDate(context.Background(), second); err == nil {
		t.Fatal("expected error for failed slot fetch")
	}
	if eng.SelectedSlot() != "" {
		t.Errorf("selectedSlot = %q, want cleared", eng.SelectedSlot())
	}
	// Capacity is unknown, so nothing is bookable.
	for _, slot := range eng.Slots() {
		if slot.Capacity != 0 {
			t.Errorf("slot %s capacity = %d after failed fetch, want 0", slot.Slot, slot.Capacity)
		}
	}
	if err := eng.SelectSlot("10-11"); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("SelectSlot after failed fetch = %v, want ErrSlotUnavailable", err)
	}
}

func TestCommitRequiresDateAndSlot(t *testing.T) {
	eng := newTestEngine(&fakeSource{})

	if _, err := eng.Commit(); !errors.Is(err, ErrIncompleteSelection) {
		t.Fatalf("Commit with nothing selected = %v, want ErrIncompleteSelection", err)
	}

	day, _ := ParseDate("2025-06-10")
	if err := eng.SelectDate(context.Background(), day); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	if _, err := eng.Commit(); !errors.Is(err, ErrIncompleteSelection) {
		t.Fatalf("Commit with only a date = %v, want ErrIncompleteSelection", err)
	}
	if eng.State() == Committed {
		t.Fatal("engine must not reach Committed without a slot")
	}
}

func TestCommitRoundTrip(t *testing.T) {
	eng := newTestEngine(&fakeSource{})

	day, _ := ParseDate("2025-06-10")
	if err := eng.SelectDate(context.Background(), day); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	if err := eng.SelectSlot("9-10"); err != nil {
		t.Fatalf("SelectSlot: %v", err)
	}
	sel, err := eng.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if sel.Date != "2025-06-10" || sel.Time != "9-10" {
		t.Fatalf("Commit = %+v, want the pair passed through unmodified", sel)
	}
	if eng.State() != Committed {
		t.Errorf("state = %v, want %v", eng.State(), Committed)
	}

	// Selecting a date afterwards restarts the flow.
	if err := eng.SelectDate(context.Background(), day); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	if eng.State() != DateSelected {
		t.Errorf("state after reselect = %v, want %v", eng.State(), DateSelected)
	}
	if eng.SelectedSlot() != "" {
		t.Errorf("selectedSlot after reselect = %q, want cleared", eng.SelectedSlot())
	}
}

func TestLateResponseForSupersededDateIsDiscarded(t *testing.T) {
	const slowDate = "2025-06-10"
	const fastDate = "2025-06-11"

	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{
		entries: map[string][]BlockEntry{
			slowDate: {{Date: slowDate, Time: "8-9", MaxSlots: 5}},
			fastDate: {{Date: fastDate, Time: "8-9", MaxSlots: 2}},
		},
	}
	src.onFetch = func(date string) {
		if date == slowDate {
			close(started)
			<-release
		}
	}
	eng := newTestEngine(src)

	slow, _ := ParseDate(slowDate)
	fast, _ := ParseDate(fastDate)

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- eng.SelectDate(context.Background(), slow)
	}()
	<-started

	if err := eng.SelectDate(context.Background(), fast); err != nil {
		t.Fatalf("SelectDate(fast): %v", err)
	}

	close(release)
	if err := <-slowDone; err != nil {
		t.Fatalf("SelectDate(slow): %v", err)
	}

	if eng.SelectedDate() != fastDate {
		t.Fatalf("selectedDate = %q, want %q", eng.SelectedDate(), fastDate)
	}
	for _, slot := range eng.Slots() {
		if slot.Slot == "08-09" && slot.Capacity != 2 {
			t.Errorf("late response overwrote slot table: 08-09 capacity = %d, want 2", slot.Capacity)
		}
	}
}

func TestSelectSlotWithoutDate(t *testing.T) {
	eng := newTestEngine(&fakeSource{})
	if err := eng.SelectSlot("08-09"); !errors.Is(err, ErrNoDateSelected) {
		t.Fatalf("SelectSlot without date = %v, want ErrNoDateSelected", err)
	}
	if eng.State() != NoDateSelected {
		t.Errorf("state = %v, want %v", eng.State(), NoDateSelected)
	}
}
