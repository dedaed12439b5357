package service

import (
	"context"
	"sync"

	"snack-cart/internal/catalog"
	"snack-cart/internal/model"
	"snack-cart/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memCartRepo is an in-memory CartRepository used to exercise the
// read-modify-write contract without a database.
type memCartRepo struct {
	mu    sync.Mutex
	carts map[string]*model.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string]*model.Cart)}
}

func ownerKey(owner model.Owner) string {
	return string(owner.Kind) + ":" + owner.ID
}

func (r *memCartRepo) Get(ctx context.Context, owner model.Owner) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart, ok := r.carts[ownerKey(owner)]; ok {
		snapshot := *cart
		snapshot.Lines = cart.CopyLines()
		return &snapshot, nil
	}
	return model.NewCart(owner), nil
}

func (r *memCartRepo) Mutate(ctx context.Context, owner model.Owner, fn func(cart *model.Cart) error) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[ownerKey(owner)]
	if !ok {
		cart = model.NewCart(owner)
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	r.carts[ownerKey(owner)] = cart
	snapshot := *cart
	snapshot.Lines = cart.CopyLines()
	return &snapshot, nil
}

func (r *memCartRepo) Clear(ctx context.Context, owner model.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, ownerKey(owner))
	return nil
}

// fakeCatalog is an in-memory catalog.Reader. Snapshot serves reads from
// the product map as it stood when Snapshot was entered.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]model.Product
}

func newFakeCatalog(products ...model.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[string]model.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) set(p model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

func (c *fakeCatalog) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.products[id]; ok {
		copied := p
		return &copied, nil
	}
	return nil, nil
}

func (c *fakeCatalog) Snapshot(ctx context.Context, fn func(tx catalog.ReadTx) error) error {
	c.mu.Lock()
	frozen := make(map[string]model.Product, len(c.products))
	for id, p := range c.products {
		frozen[id] = p
	}
	c.mu.Unlock()
	return fn(&fakeSnapshot{products: frozen})
}

type fakeSnapshot struct {
	products map[string]model.Product
}

func (s *fakeSnapshot) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if p, ok := s.products[id]; ok {
		copied := p
		return &copied, nil
	}
	return nil, nil
}

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *model.Order) (bool, error) {
	args := m.Called(ctx, order)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// fakeGateway records initiated payments and hands back fixed references.
type fakeGateway struct {
	mu       sync.Mutex
	requests []payment.Request
	err      error
}

func (g *fakeGateway) Initiate(ctx context.Context, req payment.Request) (payment.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return payment.Handle{}, g.err
	}
	g.requests = append(g.requests, req)
	return payment.Handle{GatewayRef: "gw_test"}, nil
}

func validShipping() model.ShippingDetails {
	return model.ShippingDetails{
		FirstName: "Asha",
		LastName:  "Nair",
		Email:     "asha@example.com",
		Phone:     "9999900000",
		Street:    "12 Mill Road",
		City:      "Kochi",
		State:     "Kerala",
		Country:   "India",
		Pincode:   "682001",
	}
}
