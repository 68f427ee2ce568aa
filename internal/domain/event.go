package domain

import (
	"fmt"
	"time"
)

// EventStatus represents the lifecycle state of an event
type EventStatus string

const (
	EventStatusCreated   EventStatus = "created"
	EventStatusActive    EventStatus = "active"
	EventStatusSoldOut   EventStatus = "sold_out"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

// IsValid checks if the status is a valid EventStatus
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusCreated, EventStatusActive, EventStatusSoldOut,
		EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of EventStatus
func (s EventStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status permits no further transitions
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusCancelled || s == EventStatusCompleted
}

// EventCategory classifies an event
type EventCategory string

const (
	CategoryConcert    EventCategory = "concert"
	CategorySports     EventCategory = "sports"
	CategoryConference EventCategory = "conference"
	CategoryTheater    EventCategory = "theater"
	CategoryFestival   EventCategory = "festival"
	CategoryExhibition EventCategory = "exhibition"
	CategoryOther      EventCategory = "other"
)

// IsValid checks if the category is a known EventCategory
func (c EventCategory) IsValid() bool {
	switch c {
	case CategoryConcert, CategorySports, CategoryConference, CategoryTheater,
		CategoryFestival, CategoryExhibition, CategoryOther:
		return true
	}
	return false
}

// Tier is a priced capacity bucket within an event
type Tier struct {
	Name     string `json:"name"`
	Capacity int64  `json:"capacity"`
	Price    int64  `json:"price"`
	Sold     int64  `json:"sold"`
}

// Remaining returns the unsold capacity of the tier
func (t *Tier) Remaining() int64 {
	return t.Capacity - t.Sold
}

// Event represents a sellable occasion with tiered capacity
type Event struct {
	ID            int64         `json:"id"`
	OrganizerID   string        `json:"organizer_id"`
	MetadataRef   string        `json:"metadata_ref"`
	Category      EventCategory `json:"category"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	Status        EventStatus   `json:"status"`
	Tiers         []Tier        `json:"tiers"`
	TotalCapacity int64         `json:"total_capacity"`
	Sold          int64         `json:"sold"`

	// Version is bumped by the repository on every successful update. A
	// write carrying a stale version is rejected with ErrConcurrentUpdate
	// instead of clobbering counters another writer already advanced.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventParams are the caller-supplied fields for a new event
type EventParams struct {
	OrganizerID string
	MetadataRef string
	Category    EventCategory
	StartTime   time.Time
	EndTime     time.Time
	Tiers       []Tier
}

// NewEvent validates params against the schedule policy and returns an event
// in Created state. The ID is assigned by the repository.
func NewEvent(p EventParams, now time.Time, minStartLead, minDuration time.Duration) (*Event, error) {
	if p.OrganizerID == "" {
		return nil, fmt.Errorf("%w: organizer is required", ErrInvalidSchedule)
	}
	if !p.Category.IsValid() {
		p.Category = CategoryOther
	}
	if p.StartTime.Before(now.Add(minStartLead)) {
		return nil, fmt.Errorf("%w: start time must be at least %s in the future", ErrInvalidSchedule, minStartLead)
	}
	if p.EndTime.Before(p.StartTime.Add(minDuration)) {
		return nil, fmt.Errorf("%w: end time must be at least %s after start time", ErrInvalidSchedule, minDuration)
	}

	if len(p.Tiers) == 0 {
		return nil, fmt.Errorf("%w: at least one tier is required", ErrInvalidTiers)
	}
	seen := make(map[string]bool, len(p.Tiers))
	var total int64
	tiers := make([]Tier, 0, len(p.Tiers))
	for _, t := range p.Tiers {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: tier label is required", ErrInvalidTiers)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("%w: duplicate tier label %q", ErrInvalidTiers, t.Name)
		}
		seen[t.Name] = true
		if t.Capacity <= 0 {
			return nil, fmt.Errorf("%w: tier %q has zero capacity", ErrInvalidTiers, t.Name)
		}
		if t.Price <= 0 {
			return nil, fmt.Errorf("%w: tier %q has non-positive price", ErrInvalidTiers, t.Name)
		}
		tiers = append(tiers, Tier{Name: t.Name, Capacity: t.Capacity, Price: t.Price})
		total += t.Capacity
	}

	return &Event{
		OrganizerID:   p.OrganizerID,
		MetadataRef:   p.MetadataRef,
		Category:      p.Category,
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		Status:        EventStatusCreated,
		Tiers:         tiers,
		TotalCapacity: total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Tier returns the tier with the given label
func (e *Event) Tier(name string) (*Tier, error) {
	for i := range e.Tiers {
		if e.Tiers[i].Name == name {
			return &e.Tiers[i], nil
		}
	}
	return nil, ErrTierNotFound
}

// IsPurchasable reports whether new tickets may be sold right now.
// Only Created and Active permit purchases, and never past end time.
func (e *Event) IsPurchasable(now time.Time) bool {
	if e.Status != EventStatusCreated && e.Status != EventStatusActive {
		return false
	}
	return now.Before(e.EndTime)
}

// SyncClock applies time-driven transitions: Created becomes Active at start
// time, Active/SoldOut becomes Completed at end time. Terminal states never
// change. Returns true if the status changed.
func (e *Event) SyncClock(now time.Time) bool {
	if e.Status.IsTerminal() {
		return false
	}
	changed := false
	if e.Status == EventStatusCreated && !now.Before(e.StartTime) {
		e.Status = EventStatusActive
		e.UpdatedAt = now
		changed = true
	}
	if (e.Status == EventStatusActive || e.Status == EventStatusSoldOut) && !now.Before(e.EndTime) {
		e.Status = EventStatusCompleted
		e.UpdatedAt = now
		changed = true
	}
	return changed
}

// Activate performs the explicit Created -> Active transition
func (e *Event) Activate(now time.Time) error {
	if e.Status != EventStatusCreated {
		return fmt.Errorf("%w: cannot activate from %s", ErrInvalidStatus, e.Status)
	}
	e.Status = EventStatusActive
	e.UpdatedAt = now
	return nil
}

// Cancel performs the Created|Active -> Cancelled transition. Irreversible;
// already-minted tickets remain valid records.
func (e *Event) Cancel(now time.Time) error {
	if e.Status != EventStatusCreated && e.Status != EventStatusActive {
		return fmt.Errorf("%w: cannot cancel from %s", ErrInvalidStatus, e.Status)
	}
	e.Status = EventStatusCancelled
	e.UpdatedAt = now
	return nil
}

// Complete performs the Active|SoldOut -> Completed transition
func (e *Event) Complete(now time.Time) error {
	if e.Status != EventStatusActive && e.Status != EventStatusSoldOut {
		return fmt.Errorf("%w: cannot complete from %s", ErrInvalidStatus, e.Status)
	}
	e.Status = EventStatusCompleted
	e.UpdatedAt = now
	return nil
}

// ReserveTier atomically takes one slot from the tier. The caller must hold
// the event lock. Returns the tier price on success.
func (e *Event) ReserveTier(name string, now time.Time) (int64, error) {
	if !e.IsPurchasable(now) {
		return 0, ErrNotPurchasable
	}
	tier, err := e.Tier(name)
	if err != nil {
		return 0, err
	}
	if tier.Sold >= tier.Capacity {
		return 0, ErrSoldOut
	}

	tier.Sold++
	e.Sold++
	e.UpdatedAt = now

	if err := e.CheckCapacity(); err != nil {
		// roll the increments back before surfacing the fault
		tier.Sold--
		e.Sold--
		return 0, err
	}

	if e.Sold == e.TotalCapacity && e.Status == EventStatusActive {
		e.Status = EventStatusSoldOut
	}
	return tier.Price, nil
}

// ReleaseTier is the compensating action for ReserveTier
func (e *Event) ReleaseTier(name string, now time.Time) error {
	tier, err := e.Tier(name)
	if err != nil {
		return err
	}
	if tier.Sold <= 0 || e.Sold <= 0 {
		return fmt.Errorf("%w: release without matching reservation on tier %q", ErrIntegrity, name)
	}
	tier.Sold--
	e.Sold--
	if e.Status == EventStatusSoldOut {
		e.Status = EventStatusActive
	}
	e.UpdatedAt = now
	return nil
}

// CheckCapacity verifies the capacity invariants hold. A violation is an
// internal fault, never a business error.
func (e *Event) CheckCapacity() error {
	var tierSum int64
	for i := range e.Tiers {
		t := &e.Tiers[i]
		if t.Sold > t.Capacity {
			return fmt.Errorf("%w: tier %q sold %d exceeds capacity %d", ErrIntegrity, t.Name, t.Sold, t.Capacity)
		}
		if t.Sold < 0 {
			return fmt.Errorf("%w: tier %q has negative sold count", ErrIntegrity, t.Name)
		}
		tierSum += t.Sold
	}
	if e.Sold > e.TotalCapacity {
		return fmt.Errorf("%w: event %d sold %d exceeds capacity %d", ErrIntegrity, e.ID, e.Sold, e.TotalCapacity)
	}
	if tierSum != e.Sold {
		return fmt.Errorf("%w: event %d tier sold sum %d does not match event sold %d", ErrIntegrity, e.ID, tierSum, e.Sold)
	}
	return nil
}

// Clone returns a deep copy of the event
func (e *Event) Clone() *Event {
	cp := *e
	cp.Tiers = make([]Tier, len(e.Tiers))
	copy(cp.Tiers, e.Tiers)
	return &cp
}
