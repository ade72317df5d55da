package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/Dhoini/storefront-billing/internal/domain"
	"github.com/Dhoini/storefront-billing/internal/metrics"
	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// stubGateway is an in-memory Gateway used by the service tests.
// It records every call so tests can assert which provider
// operations were (or were not) performed.
type stubGateway struct {
	customers map[string]*domain.Customer
	byEmail   map[string]*domain.Customer

	chargeStatus  string // defaults to succeeded
	sessions      map[string]*domain.CheckoutSession
	intents       map[string]*domain.SetupIntent
	subscriptions []domain.Subscription

	createdCustomers  []string
	charges           []stubCharge
	transactions      []stubTransaction
	defaultsSet       []stubDefault
	canceled          []string
	portalSessions    []stubPortal
	sessionRetrievals int
	intentRetrievals  int
}

type stubPortal struct {
	customerID string
	returnURL  string
}

type stubCharge struct {
	customerID      string
	paymentMethodID string
	amount          int64
}

type stubTransaction struct {
	customerID  string
	amount      int64
	description string
}

type stubDefault struct {
	customerID      string
	paymentMethodID string
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		customers: make(map[string]*domain.Customer),
		byEmail:   make(map[string]*domain.Customer),
		sessions:  make(map[string]*domain.CheckoutSession),
		intents:   make(map[string]*domain.SetupIntent),
	}
}

func (g *stubGateway) addCustomer(c *domain.Customer) {
	g.customers[c.ID] = c
	if c.Email != "" {
		g.byEmail[c.Email] = c
	}
}

func (g *stubGateway) CreateCustomer(_ context.Context, email, name string) (*domain.Customer, error) {
	c := &domain.Customer{
		ID:    fmt.Sprintf("cus_created_%d", len(g.createdCustomers)+1),
		Email: email,
		Name:  name,
	}
	g.addCustomer(c)
	g.createdCustomers = append(g.createdCustomers, email)
	return c, nil
}

func (g *stubGateway) FindCustomerByEmail(_ context.Context, email string) (*domain.Customer, error) {
	return g.byEmail[email], nil
}

func (g *stubGateway) GetCustomer(_ context.Context, customerID string) (*domain.Customer, error) {
	c, ok := g.customers[customerID]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (g *stubGateway) SetDefaultPaymentMethod(_ context.Context, customerID, paymentMethodID string) error {
	g.defaultsSet = append(g.defaultsSet, stubDefault{customerID: customerID, paymentMethodID: paymentMethodID})
	return nil
}

func (g *stubGateway) CreateBalanceTransaction(_ context.Context, customerID string, amount int64, description string) (*domain.BalanceTransaction, error) {
	g.transactions = append(g.transactions, stubTransaction{customerID: customerID, amount: amount, description: description})
	return &domain.BalanceTransaction{
		ID:         fmt.Sprintf("cbtxn_%d", len(g.transactions)),
		CustomerID: customerID,
		Amount:     amount,
		Currency:   "usd",
	}, nil
}

func (g *stubGateway) CreateSetupSession(_ context.Context, customerID string) (*domain.CheckoutSession, error) {
	return &domain.CheckoutSession{ID: "cs_setup", URL: "https://checkout.example/setup", CustomerID: customerID}, nil
}

func (g *stubGateway) CreateSetupIntent(_ context.Context, customerID string) (*domain.SetupIntent, error) {
	return &domain.SetupIntent{ID: "seti_new", ClientSecret: "seti_new_secret"}, nil
}

func (g *stubGateway) RetrieveSetupIntent(_ context.Context, setupIntentID string) (*domain.SetupIntent, error) {
	g.intentRetrievals++
	si, ok := g.intents[setupIntentID]
	if !ok {
		return nil, fmt.Errorf("stub: setup intent %s not found", setupIntentID)
	}
	return si, nil
}

func (g *stubGateway) CreateTopUpSession(_ context.Context, customerID string, amount int64) (*domain.CheckoutSession, error) {
	return &domain.CheckoutSession{ID: "cs_topup", URL: "https://checkout.example/topup", CustomerID: customerID}, nil
}

func (g *stubGateway) CreateSubscriptionSession(_ context.Context, customerID, priceID, planType string) (*domain.CheckoutSession, error) {
	return &domain.CheckoutSession{ID: "cs_sub_" + planType, URL: "https://checkout.example/" + priceID, CustomerID: customerID}, nil
}

func (g *stubGateway) RetrieveCheckoutSession(_ context.Context, sessionID string) (*domain.CheckoutSession, error) {
	g.sessionRetrievals++
	sess, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("stub: session %s not found", sessionID)
	}
	return sess, nil
}

func (g *stubGateway) ChargeOffSession(_ context.Context, customerID, paymentMethodID string, amount int64) (*domain.Charge, error) {
	g.charges = append(g.charges, stubCharge{customerID: customerID, paymentMethodID: paymentMethodID, amount: amount})
	status := g.chargeStatus
	if status == "" {
		status = domain.ChargeStatusSucceeded
	}
	return &domain.Charge{ID: fmt.Sprintf("pi_%d", len(g.charges)), Status: status, Amount: amount}, nil
}

func (g *stubGateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (*domain.PortalSession, error) {
	g.portalSessions = append(g.portalSessions, stubPortal{customerID: customerID, returnURL: returnURL})
	return &domain.PortalSession{URL: "https://portal.example/" + customerID}, nil
}

func (g *stubGateway) ListSubscriptions(_ context.Context, customerID string) ([]domain.Subscription, error) {
	return g.subscriptions, nil
}

func (g *stubGateway) CancelAtPeriodEnd(_ context.Context, subscriptionID string) (*domain.Subscription, error) {
	g.canceled = append(g.canceled, subscriptionID)
	for _, sub := range g.subscriptions {
		if sub.ID == subscriptionID {
			updated := sub
			updated.CancelAtPeriodEnd = true
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("stub: subscription %s not found", subscriptionID)
}

// stubProducer captures published billing events.
type stubProducer struct {
	mu     sync.Mutex
	topics []string
	events []*domain.BillingEvent
}

func (p *stubProducer) PublishBillingEvent(_ context.Context, topic string, event *domain.BillingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *stubProducer) Close() error { return nil }

func (p *stubProducer) published() []*domain.BillingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*domain.BillingEvent(nil), p.events...)
}

func (p *stubProducer) publishedTopics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// memoryEventStore is an in-memory EventStore for webhook tests.
type memoryEventStore struct {
	seen map[string]bool
}

func newMemoryEventStore() *memoryEventStore {
	return &memoryEventStore{seen: make(map[string]bool)}
}

func (s *memoryEventStore) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memoryEventStore) Unmark(_ context.Context, eventID string) error {
	delete(s.seen, eventID)
	return nil
}

func (s *memoryEventStore) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.FATAL)
}

func testMetrics() metrics.BillingMetrics {
	return metrics.NewBillingMetrics(prometheus.NewRegistry(), testLogger())
}
