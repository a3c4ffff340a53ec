package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"leadrouter.backend/internal/domain/entities"
	"leadrouter.backend/internal/domain/gateways"
	"leadrouter.backend/pkg/events"
)

// Mock ChargeGateway
type MockChargeGateway struct {
	mock.Mock
}

func (m *MockChargeGateway) CreateAndConfirm(ctx context.Context, req gateways.ChargeRequest) (*gateways.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateways.ChargeResult), args.Error(1)
}

func (m *MockChargeGateway) Retrieve(ctx context.Context, id string) (*gateways.ChargeResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateways.ChargeResult), args.Error(1)
}

func (m *MockChargeGateway) Cancel(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// replayingGateway returns the first response it gave for an idempotency key,
// the way card networks dedupe retried requests
type replayingGateway struct {
	mu        sync.Mutex
	script    []*gateways.ChargeResult
	byKey     map[string]*gateways.ChargeResult
	intents   map[string]*gateways.ChargeResult
	keys      []string
	cancelled []string
}

func newReplayingGateway(script ...*gateways.ChargeResult) *replayingGateway {
	return &replayingGateway{
		script:  script,
		byKey:   make(map[string]*gateways.ChargeResult),
		intents: make(map[string]*gateways.ChargeResult),
	}
}

func (g *replayingGateway) CreateAndConfirm(_ context.Context, req gateways.ChargeRequest) (*gateways.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.keys = append(g.keys, req.IdempotencyKey)
	if res, ok := g.byKey[req.IdempotencyKey]; ok {
		return res, nil
	}
	if len(g.script) == 0 {
		return nil, errors.New("no scripted charge left")
	}
	res := g.script[0]
	g.script = g.script[1:]
	g.byKey[req.IdempotencyKey] = res
	return res, nil
}

func (g *replayingGateway) Retrieve(_ context.Context, id string) (*gateways.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if res, ok := g.intents[id]; ok {
		return res, nil
	}
	return nil, errors.New("no such intent")
}

func (g *replayingGateway) Cancel(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelled = append(g.cancelled, id)
	return nil
}

// Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, n gateways.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// Mock LeadReassigner
type MockReassigner struct {
	mock.Mock
}

func (m *MockReassigner) ReassignToAlternative(ctx context.Context, rejected *entities.Lead) (*entities.Lead, error) {
	args := m.Called(ctx, rejected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lead), args.Error(1)
}

// Mock SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) GetBenefits(ctx context.Context, providerID uuid.UUID) (entities.SubscriptionBenefits, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).(entities.SubscriptionBenefits), args.Error(1)
}

// recordingBus captures published events synchronously
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}
