package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"snack-cart/internal/model"
	"snack-cart/internal/payment"
	"snack-cart/internal/repository"
	"snack-cart/internal/shipping"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// pendingAttempt holds one checkout attempt suspended at the payment step.
// The cart snapshot is copied by value at verification time, so later cart
// mutations cannot alter what the order will contain.
type pendingAttempt struct {
	owner          model.Owner
	code           string
	lines          []model.CartLine
	subtotal       float64
	shippingCost   float64
	total          float64
	shippingMethod string
	shipping       model.ShippingDetails
	createdAt      time.Time
}

// checkoutService implements CheckoutService. Pending attempts are kept
// in memory keyed by the pre-generated order identifier; the durable order
// row exists only after a confirmation callback.
type checkoutService struct {
	carts    CartService
	verifier StockVerifier
	orders   repository.OrderRepository
	gateway  payment.Gateway
	rates    shipping.Rates
	currency string
	logger   zerolog.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingAttempt
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts CartService,
	verifier StockVerifier,
	orders repository.OrderRepository,
	gateway payment.Gateway,
	rates shipping.Rates,
	currency string,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		carts:    carts,
		verifier: verifier,
		orders:   orders,
		gateway:  gateway,
		rates:    rates,
		currency: currency,
		logger:   logger.With().Str("service", "checkout").Logger(),
		pending:  make(map[uuid.UUID]*pendingAttempt),
	}
}

// PlaceOrder validates the request, verifies stock against one consistent
// catalogue snapshot and initiates the payment. No durable write happens
// here; the order identifier is reserved in memory until the payment
// resolves.
func (s *checkoutService) PlaceOrder(ctx context.Context, owner model.Owner, req *model.CheckoutRequest) (*model.PendingOrder, error) {
	if req == nil {
		return nil, fmt.Errorf("checkout request is nil")
	}
	if err := req.Shipping.Validate(); err != nil {
		return nil, err
	}

	shippingCost, err := s.rates.CostFor(req.ShippingMethod)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	result, err := s.verifier.Verify(ctx, cart.Lines)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, result.Err()
	}

	subtotal := cart.Subtotal()
	total := subtotal + shippingCost

	orderID := uuid.New()
	code := model.OrderCode(orderID)
	amountMinor := int64(math.Round(total * 100))

	handle, err := s.gateway.Initiate(ctx, payment.Request{
		AmountMinor: amountMinor,
		Currency:    s.currency,
		Metadata: payment.Metadata{
			OrderCode: code,
			Name:      req.Shipping.FullName(),
			Email:     req.Shipping.Email,
			Contact:   req.Shipping.Phone,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}

	s.mu.Lock()
	s.pending[orderID] = &pendingAttempt{
		owner:          owner,
		code:           code,
		lines:          cart.CopyLines(),
		subtotal:       subtotal,
		shippingCost:   shippingCost,
		total:          total,
		shippingMethod: req.ShippingMethod,
		shipping:       req.Shipping,
		createdAt:      time.Now(),
	}
	s.mu.Unlock()

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("order_code", code).
		Str("owner_id", owner.ID).
		Float64("total", total).
		Msg("checkout attempt pending payment")

	return &model.PendingOrder{
		OrderID:     orderID,
		Code:        code,
		AmountMinor: amountMinor,
		Currency:    s.currency,
		GatewayRef:  handle.GatewayRef,
	}, nil
}

// ConfirmPayment writes the order for a checkout attempt using the
// pre-generated identifier as the write key. A duplicate confirmation for
// the same attempt finds either the pending attempt (and loses the
// conditional insert) or the already-written row, and in both cases
// returns that single record.
func (s *checkoutService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, paymentRef string) (*model.Order, error) {
	return s.resolve(ctx, orderID, payment.Confirmed(paymentRef))
}

// CancelPayment abandons a checkout attempt: the reserved identifier is
// discarded, no order row is written and the cart is left untouched so the
// user can retry.
func (s *checkoutService) CancelPayment(ctx context.Context, orderID uuid.UUID) error {
	_, err := s.resolve(ctx, orderID, payment.Cancelled())
	return err
}

// resolve settles one checkout attempt with the gateway's outcome. Exactly
// one resolution wins; everything after it is answered from the order store.
func (s *checkoutService) resolve(ctx context.Context, orderID uuid.UUID, outcome payment.Outcome) (*model.Order, error) {
	if !outcome.Confirmed {
		return nil, s.cancel(orderID)
	}

	paymentRef := outcome.PaymentRef

	s.mu.Lock()
	attempt, ok := s.pending[orderID]
	s.mu.Unlock()

	if !ok {
		existing, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up order: %w", err)
		}
		if existing != nil {
			s.logger.Info().
				Str("order_id", orderID.String()).
				Msg("duplicate confirmation for completed checkout")
			return existing, nil
		}
		return nil, model.ErrUnknownCheckout
	}

	order := &model.Order{
		ID:             orderID,
		Code:           attempt.code,
		Owner:          attempt.owner,
		Email:          attempt.shipping.Email,
		Lines:          attempt.lines,
		Subtotal:       attempt.subtotal,
		ShippingCost:   attempt.shippingCost,
		Total:          attempt.total,
		ShippingMethod: attempt.shippingMethod,
		Shipping:       attempt.shipping,
		Status:         model.OrderConfirmed,
		PaymentRef:     paymentRef,
		CreatedAt:      time.Now(),
	}

	inserted, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		// Money is captured but no order is on file. This is the one
		// condition manual reconciliation handles; the payment reference
		// must reach the operator log.
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("order_code", attempt.code).
			Str("payment_ref", paymentRef).
			Str("owner_id", attempt.owner.ID).
			Msg("order recording failed after payment confirmation")
		return nil, model.ErrOrderRecordingFailed
	}

	s.mu.Lock()
	delete(s.pending, orderID)
	s.mu.Unlock()

	if !inserted {
		existing, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up order: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
		return order, nil
	}

	if err := s.carts.Clear(ctx, attempt.owner); err != nil {
		// The order stands; a lingering cart is an inconvenience, not a
		// correctness problem.
		s.logger.Warn().
			Err(err).
			Str("order_id", orderID.String()).
			Str("owner_id", attempt.owner.ID).
			Msg("failed to clear cart after order commit")
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("order_code", order.Code).
		Str("payment_ref", paymentRef).
		Float64("total", order.Total).
		Msg("order confirmed")

	return order, nil
}

func (s *checkoutService) cancel(orderID uuid.UUID) error {
	s.mu.Lock()
	attempt, ok := s.pending[orderID]
	if ok {
		delete(s.pending, orderID)
	}
	s.mu.Unlock()

	if !ok {
		return model.ErrUnknownCheckout
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("order_code", attempt.code).
		Str("owner_id", attempt.owner.ID).
		Msg("checkout attempt cancelled")

	return nil
}

// GetOrder retrieves a placed order.
func (s *checkoutService) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}
