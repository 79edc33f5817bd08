package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/api"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/checkout"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/guestcart"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/kv"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/merge"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/session"
)

// stubCore stands in for the whole marketplace core API.
type stubCore struct {
	user       *domain.User
	loginErr   error
	lines      []domain.CartLine
	linesErr   error
	merged     int
	mergeErr   error
	cleared    int
	discount   float64
	couponErr  error
	orders     []domain.OrderResult
	ordersErr  error
	profileErr error
}

func (s *stubCore) Login(context.Context, string, string) (string, *domain.User, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return "tok-1", s.user, nil
}

func (s *stubCore) Register(_ context.Context, _, _ string, role domain.Role) (string, *domain.User, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	u := *s.user
	u.Role = role
	return "tok-1", &u, nil
}

func (s *stubCore) Profile(context.Context, string) (*domain.User, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.user, nil
}

func (s *stubCore) Merge(context.Context, string, []domain.GuestCartItem) error {
	if s.mergeErr != nil {
		return s.mergeErr
	}
	s.merged++
	return nil
}

func (s *stubCore) Contents(context.Context, string) ([]domain.CartLine, error) {
	if s.linesErr != nil {
		return nil, s.linesErr
	}
	return s.lines, nil
}

func (s *stubCore) Clear(context.Context, string) error {
	s.cleared++
	s.lines = nil
	return nil
}

func (s *stubCore) ValidateCoupon(context.Context, string, string, float64) (float64, error) {
	if s.couponErr != nil {
		return 0, s.couponErr
	}
	return s.discount, nil
}

func (s *stubCore) CreateFromCart(context.Context, string, api.OrderRequest) ([]domain.OrderResult, error) {
	if s.ordersErr != nil {
		return nil, s.ordersErr
	}
	return s.orders, nil
}

func newTestServer(core *stubCore) (http.Handler, *guestcart.Store) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := kv.NewMemory()
	guest := guestcart.NewStore(store, log)
	sessions := session.NewManager(core, merge.NewProtocol(guest, core), store, log)
	flow := checkout.NewOrchestrator(core, core, core, nil, 15000, log)

	return NewRouter(guest, sessions, flow, 30*time.Second, log), guest
}

func defaultCore() *stubCore {
	return &stubCore{
		user: &domain.User{ID: "u1", Phone: "+998901234567", Role: domain.RoleBuyer},
		lines: []domain.CartLine{
			{Product: domain.ProductSnapshot{ID: "P1", SellerID: "S1", Price: 50000}, Quantity: 2},
		},
		orders: []domain.OrderResult{{Success: true, OrderNumber: "ORD-1"}},
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func guestHeaders() map[string]string {
	return map[string]string{"X-Guest-ID": "g1"}
}

func authHeaders() map[string]string {
	return map[string]string{"X-Guest-ID": "g1", "Authorization": "Bearer tok-1"}
}

func TestGuestCartFlow(t *testing.T) {
	h, _ := newTestServer(defaultCore())

	rec := doJSON(t, h, http.MethodPost, "/api/v1/guest-cart/items",
		map[string]any{"productId": "P1", "quantity": 2}, guestHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/guest-cart/items",
		map[string]any{"productId": "P1", "quantity": 3}, guestHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp guestCartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)
	assert.Equal(t, 5, resp.Count)

	rec = doJSON(t, h, http.MethodPut, "/api/v1/guest-cart/items/P1",
		map[string]any{"quantity": 0}, guestHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
}

func TestGuestCart_MissingGuestID(t *testing.T) {
	h, _ := newTestServer(defaultCore())

	rec := doJSON(t, h, http.MethodGet, "/api/v1/guest-cart/", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_MergesGuestCart(t *testing.T) {
	core := defaultCore()
	h, guest := newTestServer(core)
	guest.AddItem(context.Background(), "g1", domain.GuestCartItem{ProductID: "P9", Quantity: 1})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login",
		map[string]any{"phone": "+998901234567", "password": "secret"}, guestHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok-1", resp.Token)

	assert.Equal(t, 1, core.merged)
	assert.False(t, guest.HasItems(context.Background(), "g1"))
}

func TestLogin_MergeFailureStillLogsIn(t *testing.T) {
	core := defaultCore()
	core.mergeErr = assert.AnError
	h, guest := newTestServer(core)
	guest.AddItem(context.Background(), "g1", domain.GuestCartItem{ProductID: "P9", Quantity: 1})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login",
		map[string]any{"phone": "+998901234567", "password": "secret"}, guestHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, guest.HasItems(context.Background(), "g1"))
}

func TestMe_InvalidTokenIs401(t *testing.T) {
	core := defaultCore()
	core.profileErr = api.ErrUnauthorized
	h, _ := newTestServer(core)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/auth/me", nil, authHeaders())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckout_EmptyCartRedirects(t *testing.T) {
	core := defaultCore()
	core.lines = nil
	h, _ := newTestServer(core)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout/", nil, authHeaders())
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "empty_cart", resp.Code)
}

func TestCheckout_FullFlow(t *testing.T) {
	core := defaultCore()
	core.discount = 10000
	h, _ := newTestServer(core)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout/", nil, authHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/v1/checkout/fields",
		map[string]any{"phone": "+998901234567", "city": "Ташкент", "address": "ул. Мира, дом 5"},
		authHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout/advance", nil, authHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout/advance", nil, authHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout/coupon",
		map[string]any{"code": "SALE10"}, authHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout/submit", nil, authHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ORD-1", resp["orderNumber"])
	assert.Equal(t, 1, core.cleared)
}

func TestCheckout_AdvanceBlockedByValidation(t *testing.T) {
	h, _ := newTestServer(defaultCore())

	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout/", nil, authHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout/advance", nil, authHeaders())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Code)
}

func TestCheckout_SubmitFailureKeepsWizard(t *testing.T) {
	core := defaultCore()
	h, _ := newTestServer(core)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout/", nil, authHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, h, http.MethodPut, "/api/v1/checkout/fields",
		map[string]any{"phone": "+998901234567", "city": "Ташкент", "address": "ул. Мира, дом 5"},
		authHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	doJSON(t, h, http.MethodPost, "/api/v1/checkout/advance", nil, authHeaders())
	doJSON(t, h, http.MethodPost, "/api/v1/checkout/advance", nil, authHeaders())

	core.ordersErr = assert.AnError
	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout/submit", nil, authHeaders())
	require.Equal(t, http.StatusBadGateway, rec.Code)

	// wizard survives for a retry
	rec = doJSON(t, h, http.MethodGet, "/api/v1/checkout/", nil, authHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	core.ordersErr = nil
	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout/submit", nil, authHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestLanguagePreference(t *testing.T) {
	h, _ := newTestServer(defaultCore())

	rec := doJSON(t, h, http.MethodGet, "/api/v1/prefs/language", nil, guestHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "uz", resp["language"])

	rec = doJSON(t, h, http.MethodPut, "/api/v1/prefs/language",
		map[string]any{"language": "ru"}, guestHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/prefs/language", nil, guestHeaders())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ru", resp["language"])
}
