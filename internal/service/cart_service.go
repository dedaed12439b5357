package service

import (
	"context"
	"fmt"

	"snack-cart/internal/catalog"
	"snack-cart/internal/model"
	"snack-cart/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService. Guest and account carts live in
// different stores; the repository is selected by owner kind.
type cartService struct {
	guestRepo   repository.CartRepository
	accountRepo repository.CartRepository
	catalog     catalog.Reader
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	guestRepo repository.CartRepository,
	accountRepo repository.CartRepository,
	catalogReader catalog.Reader,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		guestRepo:   guestRepo,
		accountRepo: accountRepo,
		catalog:     catalogReader,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// repoFor selects the backing store for an owner.
func (s *cartService) repoFor(owner model.Owner) repository.CartRepository {
	if owner.Kind == model.OwnerAccount {
		return s.accountRepo
	}
	return s.guestRepo
}

// Get retrieves the owner's cart, empty when nothing is stored.
func (s *cartService) Get(ctx context.Context, owner model.Owner) (*model.Cart, error) {
	return s.repoFor(owner).Get(ctx, owner)
}

// AddItem adds quantity of a product+variant to the cart, capturing the
// unit price at add time. An existing line only has its quantity
// incremented; its price and name stay as captured.
func (s *cartService) AddItem(ctx context.Context, owner model.Owner, productID, variantKey string, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		s.logger.Warn().Str("product_id", productID).Msg("add to cart for unknown product")
		return nil, model.ErrProductMissing
	}

	key := model.LineKey(productID, variantKey)
	cart, err := s.repoFor(owner).Mutate(ctx, owner, func(cart *model.Cart) error {
		if idx := cart.FindLine(key); idx >= 0 {
			cart.Lines[idx].Quantity += quantity
			return nil
		}
		cart.Lines = append(cart.Lines, model.CartLine{
			ProductID:   productID,
			VariantKey:  variantKey,
			DisplayName: product.DisplayNameFor(variantKey),
			ImageRef:    product.ImageRef,
			Quantity:    quantity,
			UnitPrice:   product.UnitPriceFor(variantKey),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("owner_id", owner.ID).
		Str("line_key", key).
		Int("quantity", quantity).
		Msg("item added to cart")

	return cart, nil
}

// UpdateQuantity replaces a line's quantity; a quantity below 1 removes the
// line instead. A key with no matching line is a no-op.
func (s *cartService) UpdateQuantity(ctx context.Context, owner model.Owner, key string, quantity int) (*model.Cart, error) {
	return s.repoFor(owner).Mutate(ctx, owner, func(cart *model.Cart) error {
		idx := cart.FindLine(key)
		if idx < 0 {
			return nil
		}
		if quantity < 1 {
			cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
			return nil
		}
		cart.Lines[idx].Quantity = quantity
		return nil
	})
}

// RemoveItem removes the line with the given identity key.
func (s *cartService) RemoveItem(ctx context.Context, owner model.Owner, key string) (*model.Cart, error) {
	return s.repoFor(owner).Mutate(ctx, owner, func(cart *model.Cart) error {
		if idx := cart.FindLine(key); idx >= 0 {
			cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
		}
		return nil
	})
}

// Clear empties the owner's cart.
func (s *cartService) Clear(ctx context.Context, owner model.Owner) error {
	return s.repoFor(owner).Clear(ctx, owner)
}

// MergeGuestIntoAccount folds the guest cart into the account cart, summing
// quantities for lines sharing an identity key, then discards the guest
// cart. The account line's captured price and name win for merged keys.
func (s *cartService) MergeGuestIntoAccount(ctx context.Context, guest, account model.Owner) (*model.Cart, error) {
	guestCart, err := s.guestRepo.Get(ctx, guest)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest cart: %w", err)
	}

	merged, err := s.accountRepo.Mutate(ctx, account, func(cart *model.Cart) error {
		for _, line := range guestCart.Lines {
			if idx := cart.FindLine(line.Key()); idx >= 0 {
				cart.Lines[idx].Quantity += line.Quantity
				continue
			}
			cart.Lines = append(cart.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.guestRepo.Clear(ctx, guest); err != nil {
		// The merged cart is already persisted; surface the leftover guest
		// cart rather than failing the merge.
		s.logger.Warn().
			Err(err).
			Str("guest_id", guest.ID).
			Msg("failed to discard guest cart after merge")
	}

	s.logger.Info().
		Str("guest_id", guest.ID).
		Str("account_id", account.ID).
		Int("line_count", len(merged.Lines)).
		Msg("guest cart merged into account")

	return merged, nil
}
