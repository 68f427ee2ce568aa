package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/internal/service"
	"github.com/Amity808/entrytagv1/internal/settlement"
	"github.com/Amity808/entrytagv1/pkg/middleware"
	"github.com/Amity808/entrytagv1/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asAccount injects an authenticated account the way the auth middleware does
func asAccount(accountID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if accountID != "" {
			c.Set(middleware.ContextKeyAccount, accountID)
		}
		c.Next()
	}
}

type mockEventService struct {
	createFn func(ctx context.Context, organizerID string, params service.CreateEventParams) (*domain.Event, error)
	getFn    func(ctx context.Context, id int64) (*domain.Event, error)
	listFn   func(ctx context.Context, filter repository.ListFilter) ([]*domain.Event, int64, error)
}

func (m *mockEventService) CreateEvent(ctx context.Context, organizerID string, params service.CreateEventParams) (*domain.Event, error) {
	return m.createFn(ctx, organizerID, params)
}

func (m *mockEventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	return m.getFn(ctx, id)
}

func (m *mockEventService) ListEvents(ctx context.Context, filter repository.ListFilter) ([]*domain.Event, int64, error) {
	return m.listFn(ctx, filter)
}

func (m *mockEventService) ActivateEvent(_ context.Context, _ string, _ int64) (*domain.Event, error) {
	return nil, domain.ErrEventNotFound
}

func (m *mockEventService) CancelEvent(_ context.Context, _ string, _ int64) (*domain.Event, error) {
	return nil, domain.ErrEventNotFound
}

func (m *mockEventService) CompleteEvent(_ context.Context, _ string, _ int64) (*domain.Event, error) {
	return nil, domain.ErrEventNotFound
}

type mockPurchaseService struct {
	purchaseFn func(ctx context.Context, buyerID string, params service.PurchaseParams) (*service.PurchaseResult, error)
}

func (m *mockPurchaseService) Purchase(ctx context.Context, buyerID string, params service.PurchaseParams) (*service.PurchaseResult, error) {
	return m.purchaseFn(ctx, buyerID, params)
}

type mockPayoutService struct {
	withdrawFn func(ctx context.Context, accountID string, amount int64) (*settlement.Receipt, error)
}

func (m *mockPayoutService) AccountStatement(_ context.Context, _ string) ([]*domain.FeeEntry, error) {
	return nil, nil
}

func (m *mockPayoutService) EventStatement(_ context.Context, _ string, _ int64) ([]*domain.FeeEntry, error) {
	return nil, nil
}

func (m *mockPayoutService) PlatformFees(_ context.Context) (int64, error) {
	return 750, nil
}

func (m *mockPayoutService) Withdraw(ctx context.Context, accountID string, amount int64) (*settlement.Receipt, error) {
	return m.withdrawFn(ctx, accountID, amount)
}

func sampleEvent() *domain.Event {
	now := time.Now()
	return &domain.Event{
		ID:            1,
		OrganizerID:   "org-1",
		Category:      domain.CategoryConcert,
		StartTime:     now.Add(2 * time.Hour),
		EndTime:       now.Add(6 * time.Hour),
		Status:        domain.EventStatusCreated,
		Tiers:         []domain.Tier{{Name: "general", Capacity: 100, Price: 5000}},
		TotalCapacity: 100,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return &resp
}

func TestCreateEventHandler(t *testing.T) {
	svc := &mockEventService{
		createFn: func(_ context.Context, organizerID string, params service.CreateEventParams) (*domain.Event, error) {
			if organizerID != "org-1" {
				t.Errorf("expected organizer from auth context, got %s", organizerID)
			}
			if len(params.Tiers) != 1 || params.Tiers[0].Name != "general" {
				t.Errorf("unexpected tiers: %+v", params.Tiers)
			}
			return sampleEvent(), nil
		},
	}
	h := NewEventHandler(svc)

	router := gin.New()
	router.POST("/events", asAccount("org-1"), h.Create)

	now := time.Now()
	body := map[string]any{
		"category":   "concert",
		"start_time": now.Add(2 * time.Hour).Format(time.RFC3339),
		"end_time":   now.Add(6 * time.Hour).Format(time.RFC3339),
		"tiers":      []map[string]any{{"name": "general", "capacity": 100, "price": 5000}},
	}

	rec := doRequest(router, http.MethodPost, "/events", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeResponse(t, rec); !resp.Success {
		t.Errorf("expected success envelope, got %+v", resp)
	}
}

func TestCreateEventHandler_RequiresAuth(t *testing.T) {
	h := NewEventHandler(&mockEventService{})

	router := gin.New()
	router.POST("/events", asAccount(""), h.Create)

	rec := doRequest(router, http.MethodPost, "/events", map[string]any{})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGetEventHandler_NotFound(t *testing.T) {
	svc := &mockEventService{
		getFn: func(_ context.Context, _ int64) (*domain.Event, error) {
			return nil, domain.ErrEventNotFound
		},
	}
	h := NewEventHandler(svc)

	router := gin.New()
	router.GET("/events/:id", h.Get)

	rec := doRequest(router, http.MethodGet, "/events/42", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/events/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestPurchaseHandler(t *testing.T) {
	now := time.Now()
	svc := &mockPurchaseService{
		purchaseFn: func(_ context.Context, buyerID string, params service.PurchaseParams) (*service.PurchaseResult, error) {
			if buyerID != "alice" {
				t.Errorf("expected buyer from auth context, got %s", buyerID)
			}
			if params.Amount != 5000 {
				t.Errorf("unexpected amount %d", params.Amount)
			}
			ticket := domain.NewTicket(1, "general", buyerID, 5000, now)
			ticket.ID = 10
			fee, err := domain.NewFeeEntry(domain.FeeKindPrimary, 1, 10, 0, buyerID, "org-1", 5000, 500, "txn-1", "USD", now)
			if err != nil {
				t.Fatalf("NewFeeEntry: %v", err)
			}
			return &service.PurchaseResult{Ticket: ticket, FeeEntry: fee}, nil
		},
	}
	h := NewPurchaseHandler(svc)

	router := gin.New()
	router.POST("/purchases", asAccount("alice"), h.Purchase)

	body := map[string]any{"event_id": 1, "tier_name": "general", "amount": 5000}
	rec := doRequest(router, http.MethodPost, "/purchases", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPurchaseHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"sold out", domain.ErrSoldOut, http.StatusConflict},
		{"payment declined", domain.ErrPaymentFailed, http.StatusPaymentRequired},
		{"amount mismatch", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"unknown event", domain.ErrEventNotFound, http.StatusNotFound},
		{"not purchasable", domain.ErrNotPurchasable, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPurchaseService{
				purchaseFn: func(_ context.Context, _ string, _ service.PurchaseParams) (*service.PurchaseResult, error) {
					return nil, tt.serviceErr
				},
			}
			h := NewPurchaseHandler(svc)

			router := gin.New()
			router.POST("/purchases", asAccount("alice"), h.Purchase)

			body := map[string]any{"event_id": 1, "tier_name": "general", "amount": 5000}
			rec := doRequest(router, http.MethodPost, "/purchases", body)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Success || resp.Error == nil {
				t.Errorf("expected error envelope, got %+v", resp)
			}
		})
	}
}

func TestWithdrawHandler(t *testing.T) {
	svc := &mockPayoutService{
		withdrawFn: func(_ context.Context, accountID string, amount int64) (*settlement.Receipt, error) {
			if accountID != "org-1" || amount != 4750 {
				t.Errorf("unexpected withdraw call: %s %d", accountID, amount)
			}
			return &settlement.Receipt{TransactionID: "txn-9", Settled: true}, nil
		},
	}
	h := NewFeeHandler(svc)

	router := gin.New()
	router.POST("/payouts/withdraw", asAccount("org-1"), h.Withdraw)

	rec := doRequest(router, http.MethodPost, "/payouts/withdraw", map[string]any{"amount": 4750})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	t.Run("insufficient balance", func(t *testing.T) {
		svc.withdrawFn = func(_ context.Context, _ string, _ int64) (*settlement.Receipt, error) {
			return nil, domain.ErrInsufficientBalance
		}
		rec := doRequest(router, http.MethodPost, "/payouts/withdraw", map[string]any{"amount": 4750})
		if rec.Code != http.StatusPaymentRequired {
			t.Fatalf("expected 402, got %d", rec.Code)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	rec := doRequest(router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when nothing is configured, got %d", rec.Code)
	}
}
