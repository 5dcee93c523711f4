package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BlockEntry is one administrative override of a single (date, slot) pair's
// capacity. Absence of an entry means DefaultCapacity applies.
type BlockEntry struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	MaxSlots int    `json:"maxSlots"`
}

// BlockSource fetches the block entries for one ISO date. An empty result is
// a valid answer meaning "no override".
type BlockSource interface {
	BlockDates(ctx context.Context, date string) ([]BlockEntry, error)
}

// State is the booking-flow position of an Engine.
type State int

const (
	NoDateSelected State = iota
	DateSelected
	SlotSelected
	Committed
)

func (s State) String() string {
	switch s {
	case NoDateSelected:
		return "no date selected"
	case DateSelected:
		return "date selected"
	case SlotSelected:
		return "slot selected"
	case Committed:
		return "committed"
	}
	return "unknown"
}

// Selection is a committed (date, slot) pair, handed to the booking form.
type Selection struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// SlotCapacity annotates one fixed slot with its remaining capacity on the
// selected date.
type SlotCapacity struct {
	Slot     string `json:"slot"`
	Capacity int    `json:"capacity"`
}

var (
	ErrNoDateSelected      = errors.New("no date selected")
	ErrSlotUnavailable     = errors.New("slot has no remaining capacity")
	ErrIncompleteSelection = errors.New("select a date and time slot first")
)

// Engine computes which dates and slots are bookable and tracks the user's
// in-progress selection. All capacity data comes from the block-date source;
// a fetch failure degrades the affected date or slot to zero capacity rather
// than letting a booking proceed against unknown capacity.
type Engine struct {
	source BlockSource
	logger *zap.Logger
	now    func() time.Time

	mu           sync.Mutex
	availability map[string]int
	state        State
	selectedDate string
	selectedSlot string
	slotCaps     map[string]int
	generation   uint64
}

func NewEngine(source BlockSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// LoadAvailability builds the per-date availability map for every date in
// the inclusive range: the sum of block-entry capacities when entries exist,
// the default rule when none do, and zero when the fetch fails.
func (e *Engine) LoadAvailability(ctx context.Context, start, end time.Time) error {
	avail := map[string]int{}
	var failed int
	for day := startOfDay(start); !day.After(startOfDay(end)); day = day.AddDate(0, 0, 1) {
		date := day.Format(DateLayout)
		entries, err := e.source.BlockDates(ctx, date)
		if err != nil {
			e.logger.Warn("block date fetch failed, treating date as full",
				zap.String("date", date), zap.Error(err))
			avail[date] = 0
			failed++
			continue
		}
		if len(entries) == 0 {
			avail[date] = DefaultCapacity(day)
			continue
		}
		total := 0
		for _, entry := range entries {
			total += entry.MaxSlots
		}
		avail[date] = total
	}

	e.mu.Lock()
	e.availability = avail
	e.mu.Unlock()

	if failed > 0 {
		return fmt.Errorf("availability incomplete: %d of %d dates failed to load", failed, len(avail))
	}
	return nil
}

// LoadMonth loads the rolling window from today through one month out.
func (e *Engine) LoadMonth(ctx context.Context) error {
	today := startOfDay(e.now())
	return e.LoadAvailability(ctx, today, today.AddDate(0, 1, 0))
}

// IsDateSelectable reports whether a calendar date can be picked: never in
// the past or inside the lead-time window, and only while the date still has
// capacity. Dates outside the loaded window fall back to the default rule.
func (e *Engine) IsDateSelectable(date time.Time) bool {
	day := startOfDay(date)
	today := startOfDay(e.now())
	if day.Before(today) {
		return false
	}
	if !day.After(today.AddDate(0, 0, LeadDays)) {
		return false
	}

	e.mu.Lock()
	remaining, ok := e.availability[day.Format(DateLayout)]
	e.mu.Unlock()
	if !ok {
		remaining = DefaultCapacity(day)
	}
	return remaining > 0
}

// SelectDate makes date the active selection, clearing any chosen slot, and
// loads that date's per-slot capacity table. The prior slot is cleared before
// the fetch starts, so abandoning a slow fetch never leaves a stale slot
// selected. A response that arrives after a newer SelectDate call is
// discarded.
func (e *Engine) SelectDate(ctx context.Context, date time.Time) error {
	day := startOfDay(date)
	dateStr := day.Format(DateLayout)

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.selectedDate = dateStr
	e.selectedSlot = ""
	e.slotCaps = nil
	e.state = DateSelected
	e.mu.Unlock()

	entries, err := e.source.BlockDates(ctx, dateStr)
	caps := make(map[string]int, len(TimeSlots))
	if err != nil {
		e.logger.Warn("slot fetch failed, marking all slots full",
			zap.String("date", dateStr), zap.Error(err))
		for _, slot := range TimeSlots {
			caps[slot] = 0
		}
	} else {
		for _, slot := range TimeSlots {
			caps[slot] = slotCapacity(slot, day, entries)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		// A newer selection superseded this fetch.
		return nil
	}
	e.slotCaps = caps
	if err != nil {
		return fmt.Errorf("load slots for %s: %w", dateStr, err)
	}
	return nil
}

func slotCapacity(slot string, day time.Time, entries []BlockEntry) int {
	want := NormalizeSlot(slot)
	for _, entry := range entries {
		if NormalizeSlot(entry.Time) == want {
			return entry.MaxSlots
		}
	}
	return DefaultCapacity(day)
}

// Slots returns the eight fixed slots for the selected date in display
// order. Before the capacity table has loaded (or after a failed load) every
// slot reports zero capacity.
func (e *Engine) Slots() []SlotCapacity {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selectedDate == "" {
		return nil
	}
	slots := make([]SlotCapacity, 0, len(TimeSlots))
	for _, slot := range TimeSlots {
		capacity := 0
		if e.slotCaps != nil {
			capacity = e.slotCaps[slot]
		}
		slots = append(slots, SlotCapacity{Slot: slot, Capacity: capacity})
	}
	return slots
}

// SelectSlot records the slot as the current selection. Slots with no
// remaining capacity, or whose capacity is unknown because the load failed,
// are rejected and the previous selection is kept.
func (e *Engine) SelectSlot(label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selectedDate == "" {
		return ErrNoDateSelected
	}
	canon, ok := CanonicalSlot(label)
	if !ok {
		return fmt.Errorf("unknown time slot %q", label)
	}
	if e.slotCaps == nil || e.slotCaps[canon] <= 0 {
		return ErrSlotUnavailable
	}
	// The label is kept as given so the committed pair reaches the booking
	// form exactly as the caller selected it.
	e.selectedSlot = strings.TrimSpace(label)
	e.state = SlotSelected
	return nil
}

// Commit finalises the selection and returns it for the booking form. Both
// date and slot must be set; otherwise the wizard must not advance.
func (e *Engine) Commit() (Selection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selectedDate == "" || e.selectedSlot == "" {
		return Selection{}, ErrIncompleteSelection
	}
	e.state = Committed
	return Selection{Date: e.selectedDate, Time: e.selectedSlot}, nil
}

// State reports the engine's position in the booking flow.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SelectedDate returns the active date as an ISO string, or "" when none.
func (e *Engine) SelectedDate() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedDate
}

// SelectedSlot returns the chosen slot label, or "" when none.
func (e *Engine) SelectedSlot() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedSlot
}

// Availability returns a copy of the per-date remaining-capacity map built by
// the last LoadAvailability call.
func (e *Engine) Availability() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]int, len(e.availability))
	for date, remaining := range e.availability {
		out[date] = remaining
	}
	return out
}
