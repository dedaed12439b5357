package service

import (
	"context"
	"testing"

	"snack-cart/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCartService(products ...model.Product) (CartService, *memCartRepo, *memCartRepo, *fakeCatalog) {
	guestRepo := newMemCartRepo()
	accountRepo := newMemCartRepo()
	cat := newFakeCatalog(products...)
	svc := NewCartService(guestRepo, accountRepo, cat, zerolog.Nop())
	return svc, guestRepo, accountRepo, cat
}

func discounted(v float64) *float64 { return &v }

func TestCartService_AddItem_NewLine(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService(model.Product{
		ID: "rice-1kg", Name: "Basmati Rice", Price: 120, ImageRef: "img/rice.jpg", InStock: true,
	})
	owner := model.GuestOwner("sess-1")

	cart, err := svc.AddItem(ctx, owner, "rice-1kg", model.NoVariant, 2)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	line := cart.Lines[0]
	assert.Equal(t, "rice-1kg", line.ProductID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 120.0, line.UnitPrice)
	assert.Equal(t, "Basmati Rice", line.DisplayName)
	assert.Equal(t, "img/rice.jpg", line.ImageRef)
}

func TestCartService_AddItem_VariantPricePreference(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService(model.Product{
		ID: "ghee", Name: "Ghee", Price: 500, InStock: true,
		Variants: []model.Variant{
			{Key: "250g", Price: 150, DiscountPrice: discounted(130), InStock: true},
			{Key: "500g", Price: 280, InStock: true},
		},
	})
	owner := model.GuestOwner("sess-1")

	cart, err := svc.AddItem(ctx, owner, "ghee", "250g", 1)
	require.NoError(t, err)
	assert.Equal(t, 130.0, cart.Lines[0].UnitPrice)
	assert.Equal(t, "Ghee (250g)", cart.Lines[0].DisplayName)

	cart, err = svc.AddItem(ctx, owner, "ghee", "500g", 1)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 280.0, cart.Lines[1].UnitPrice)
}

func TestCartService_AddItem_ExistingLineIncrementsOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, _, cat := newTestCartService(model.Product{
		ID: "rice-1kg", Name: "Basmati Rice", Price: 120, InStock: true,
	})
	owner := model.GuestOwner("sess-1")

	_, err := svc.AddItem(ctx, owner, "rice-1kg", model.NoVariant, 1)
	require.NoError(t, err)

	// Catalogue price change between adds must not touch the captured price.
	cat.set(model.Product{ID: "rice-1kg", Name: "Basmati Rice Gold", Price: 999, InStock: true})

	cart, err := svc.AddItem(ctx, owner, "rice-1kg", model.NoVariant, 3)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 4, cart.Lines[0].Quantity)
	assert.Equal(t, 120.0, cart.Lines[0].UnitPrice)
	assert.Equal(t, "Basmati Rice", cart.Lines[0].DisplayName)
}

func TestCartService_AddItem_PriceSnapshotStability(t *testing.T) {
	ctx := context.Background()
	svc, _, _, cat := newTestCartService(model.Product{
		ID: "rice-1kg", Name: "Basmati Rice", Price: 120, InStock: true,
	})
	owner := model.GuestOwner("sess-1")

	_, err := svc.AddItem(ctx, owner, "rice-1kg", model.NoVariant, 1)
	require.NoError(t, err)

	cat.set(model.Product{ID: "rice-1kg", Name: "Basmati Rice", Price: 200, InStock: true})

	cart, err := svc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 120.0, cart.Lines[0].UnitPrice)
}

func TestCartService_AddItem_QuantityClampedToOne(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService(model.Product{
		ID: "rice-1kg", Name: "Basmati Rice", Price: 120, InStock: true,
	})
	owner := model.GuestOwner("sess-1")

	cart, err := svc.AddItem(ctx, owner, "rice-1kg", model.NoVariant, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
}

func TestCartService_AddItem_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService()
	owner := model.GuestOwner("sess-1")

	_, err := svc.AddItem(ctx, owner, "nope", model.NoVariant, 1)
	assert.ErrorIs(t, err, model.ErrProductMissing)
}

func TestCartService_UpdateQuantity_Floor(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService(model.Product{
		ID: "rice-1kg", Name: "Basmati Rice", Price: 120, InStock: true,
	})
	owner := model.GuestOwner("sess-1")

	_, err := svc.AddItem(ctx, owner, "rice-1kg", model.NoVariant, 2)
	require.NoError(t, err)
	key := model.LineKey("rice-1kg", model.NoVariant)

	cart, err := svc.UpdateQuantity(ctx, owner, key, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Lines[0].Quantity)

	cart, err = svc.UpdateQuantity(ctx, owner, key, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	// A negative quantity must also remove, never produce a negative line.
	_, err = svc.AddItem(ctx, owner, "rice-1kg", model.NoVariant, 2)
	require.NoError(t, err)
	cart, err = svc.UpdateQuantity(ctx, owner, key, -5)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_UpdateQuantity_UnknownKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService()
	owner := model.GuestOwner("sess-1")

	cart, err := svc.UpdateQuantity(ctx, owner, "ghost", 3)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService(model.Product{
		ID: "rice-1kg", Name: "Basmati Rice", Price: 120, InStock: true,
	})
	owner := model.GuestOwner("sess-1")

	_, err := svc.AddItem(ctx, owner, "rice-1kg", model.NoVariant, 1)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, owner, model.LineKey("rice-1kg", model.NoVariant))
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	// Removing again is a no-op.
	cart, err = svc.RemoveItem(ctx, owner, model.LineKey("rice-1kg", model.NoVariant))
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_Clear(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService(model.Product{
		ID: "rice-1kg", Name: "Basmati Rice", Price: 120, InStock: true,
	})
	owner := model.AccountOwner("user-1")

	_, err := svc.AddItem(ctx, owner, "rice-1kg", model.NoVariant, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, owner))

	cart, err := svc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_MergeGuestIntoAccount_NonLoss(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService(
		model.Product{ID: "rice-1kg", Name: "Basmati Rice", Price: 120, InStock: true},
		model.Product{ID: "dal-500g", Name: "Toor Dal", Price: 80, InStock: true},
		model.Product{ID: "ghee", Name: "Ghee", Price: 500, InStock: true},
	)
	guest := model.GuestOwner("sess-1")
	account := model.AccountOwner("user-1")

	_, err := svc.AddItem(ctx, guest, "rice-1kg", model.NoVariant, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest, "dal-500g", model.NoVariant, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, account, "ghee", model.NoVariant, 1)
	require.NoError(t, err)

	merged, err := svc.MergeGuestIntoAccount(ctx, guest, account)
	require.NoError(t, err)

	assert.Len(t, merged.Lines, 3)

	// The guest cart is discarded after the merge.
	guestCart, err := svc.Get(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, guestCart.Lines)
}

func TestCartService_MergeGuestIntoAccount_SumsSharedKeys(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestCartService(
		model.Product{ID: "rice-1kg", Name: "Basmati Rice", Price: 120, InStock: true},
	)
	guest := model.GuestOwner("sess-1")
	account := model.AccountOwner("user-1")

	_, err := svc.AddItem(ctx, guest, "rice-1kg", model.NoVariant, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, account, "rice-1kg", model.NoVariant, 3)
	require.NoError(t, err)

	merged, err := svc.MergeGuestIntoAccount(ctx, guest, account)
	require.NoError(t, err)

	require.Len(t, merged.Lines, 1)
	assert.Equal(t, 5, merged.Lines[0].Quantity)
}
