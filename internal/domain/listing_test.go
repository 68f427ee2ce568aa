package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewListing(t *testing.T) {
	now := time.Now()

	l, err := NewListing(7, 1, "acct-1", 15000, now)
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if l.Status != ListingStatusActive {
		t.Errorf("expected active, got %s", l.Status)
	}
	if len(l.PriceHistory) != 1 || l.PriceHistory[0].Price != 15000 {
		t.Errorf("expected initial price point, got %+v", l.PriceHistory)
	}

	if _, err := NewListing(7, 1, "acct-1", 0, now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestListingUpdatePrice(t *testing.T) {
	now := time.Now()
	l, _ := NewListing(7, 1, "acct-1", 15000, now)

	if err := l.UpdatePrice(12000, now.Add(time.Minute)); err != nil {
		t.Fatalf("UpdatePrice: %v", err)
	}
	if l.Price != 12000 {
		t.Errorf("expected price 12000, got %d", l.Price)
	}
	if len(l.PriceHistory) != 2 {
		t.Errorf("expected 2 price points, got %d", len(l.PriceHistory))
	}

	if err := l.UpdatePrice(-5, now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	_ = l.Cancel(now)
	if err := l.UpdatePrice(9000, now); !errors.Is(err, ErrListingNotActive) {
		t.Fatalf("expected ErrListingNotActive, got %v", err)
	}
}

func TestListingMarkSold(t *testing.T) {
	now := time.Now()
	l, _ := NewListing(7, 1, "acct-1", 15000, now)

	if err := l.MarkSold("acct-2", now); err != nil {
		t.Fatalf("MarkSold: %v", err)
	}
	if l.BuyerID != "acct-2" || l.SoldAt == nil {
		t.Errorf("sale record incomplete: %+v", l)
	}
	if err := l.MarkSold("acct-3", now); !errors.Is(err, ErrListingNotActive) {
		t.Fatalf("expected ErrListingNotActive on resold listing, got %v", err)
	}
}

func TestListingCancel(t *testing.T) {
	now := time.Now()
	l, _ := NewListing(7, 1, "acct-1", 15000, now)

	if err := l.Cancel(now); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := l.Cancel(now); !errors.Is(err, ErrListingNotActive) {
		t.Fatalf("expected ErrListingNotActive, got %v", err)
	}
}

func TestListingClone(t *testing.T) {
	now := time.Now()
	l, _ := NewListing(7, 1, "acct-1", 15000, now)
	_ = l.MarkSold("acct-2", now)

	cp := l.Clone()
	cp.PriceHistory[0].Price = 1
	*cp.SoldAt = now.Add(time.Hour)

	if l.PriceHistory[0].Price != 15000 {
		t.Error("clone must not share price history")
	}
	if !l.SoldAt.Equal(now) {
		t.Error("clone must not share sold timestamp")
	}
}
