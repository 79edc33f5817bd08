package checkout

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/api"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/events"
)

type mockCartReader struct {
	mu      sync.Mutex
	lines   []domain.CartLine
	err     error
	cleared int
}

func (m *mockCartReader) Contents(context.Context, string) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.lines, nil
}

func (m *mockCartReader) Clear(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	m.lines = nil
	return nil
}

type mockCouponValidator struct {
	discount float64
	err      error
	gotCode  string
	gotAmt   float64
	block    chan struct{} // when set, ValidateCoupon waits until closed
}

func (m *mockCouponValidator) ValidateCoupon(_ context.Context, _, code string, amount float64) (float64, error) {
	if m.block != nil {
		<-m.block
	}
	m.gotCode = code
	m.gotAmt = amount
	if m.err != nil {
		return 0, m.err
	}
	return m.discount, nil
}

type mockOrderCreator struct {
	mu      sync.Mutex
	results []domain.OrderResult
	err     error
	gotReq  api.OrderRequest
	calls   int
	block   chan struct{} // when set, CreateFromCart waits until closed
}

func (m *mockOrderCreator) CreateFromCart(_ context.Context, _ string, req api.OrderRequest) ([]domain.OrderResult, error) {
	m.mu.Lock()
	m.calls++
	m.gotReq = req
	m.mu.Unlock()
	if m.block != nil {
		<-m.block
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.OrderPlaced
	err    error
}

func (m *mockPublisher) OrderPlaced(_ context.Context, ev events.OrderPlaced) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testLines() []domain.CartLine {
	return []domain.CartLine{
		{Product: domain.ProductSnapshot{ID: "P1", SellerID: "S1", Price: 50000}, Quantity: 2},
		{Product: domain.ProductSnapshot{ID: "P2", SellerID: "S2", Price: 30000}, Quantity: 1},
	}
}
