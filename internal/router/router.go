package router

import (
	"net/http"
	"strings"

	"snack-cart/internal/handler"
	"snack-cart/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Cart routes: the collection path handles read and clear, the items
	// path handles line-level mutations.
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cartHandler.Get(w, r)
		case http.MethodDelete:
			cartHandler.Clear(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/cart/merge", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		cartHandler.Merge(w, r)
	})

	cartItemsHandler := func(w http.ResponseWriter, r *http.Request) {
		// A bare /api/cart/items only accepts new lines; keyed paths
		// accept quantity updates and removals.
		keyed := strings.HasPrefix(r.URL.Path, "/api/cart/items/") && r.URL.Path != "/api/cart/items/"

		switch {
		case r.Method == http.MethodPost && !keyed:
			cartHandler.AddItem(w, r)
		case r.Method == http.MethodPut && keyed:
			cartHandler.UpdateQuantity(w, r)
		case r.Method == http.MethodDelete && keyed:
			cartHandler.RemoveItem(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
	mux.HandleFunc("/api/cart/items", cartItemsHandler)
	mux.HandleFunc("/api/cart/items/", cartItemsHandler)

	// Checkout and payment routes
	mux.HandleFunc("/api/checkout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		checkoutHandler.Place(w, r)
	})

	mux.HandleFunc("/api/payments/confirm", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		checkoutHandler.Confirm(w, r)
	})

	mux.HandleFunc("/api/payments/cancel", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		checkoutHandler.Cancel(w, r)
	})

	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path == "/api/orders/" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		checkoutHandler.GetOrder(w, r)
	})

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth -> ResolveOwner
	var handler http.Handler = mux
	handler = middleware.ResolveOwner(handler)
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
