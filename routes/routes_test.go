package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/controllers"
	"github.com/yashrajoria/E-Commerce-backend/storefront/database"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/middleware"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	"github.com/yashrajoria/E-Commerce-backend/storefront/routes"
	"github.com/yashrajoria/E-Commerce-backend/storefront/services"
)

// upstream fakes the catalog endpoint, the order-intake endpoint (orders are
// stored and listed back exactly as posted) and the auth backend.
type upstream struct {
	mu     sync.Mutex
	orders []map[string]any
}

func (u *upstream) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/exec", func(w http.ResponseWriter, r *http.Request) {
		rows := []map[string]any{
			{"IdProducto": 3, "Nombre": "Queso", "Precio": "9,99", "Categoria": "Lacteos"},
			{"IdProducto": 5, "Nombre": "Pan", "Precio": 1.5},
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": rows})
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			rows := make([]map[string]any, 0, len(u.orders))
			for i, o := range u.orders {
				row := map[string]any{"id": 100 + i}
				for k, v := range o {
					row[k] = v
				}
				rows = append(rows, row)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": rows})
		case http.MethodPost:
			var p map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			u.orders = append(u.orders, p)
			w.WriteHeader(http.StatusOK)
		}
	})
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		role := models.RoleUser
		if req["username"] == "admin" {
			role = models.RoleAdmin
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "opaque", "username": req["username"], "role": role})
	})
	return mux
}

type RoutesTestSuite struct {
	suite.Suite
	upstream *upstream
	server   *httptest.Server
	router   *gin.Engine
	cart     *database.CartStore
	session  string
	cancel   context.CancelFunc
}

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RoutesTestSuite))
}

func (s *RoutesTestSuite) SetupTest() {
	s.upstream = &upstream{}
	s.session = uuid.NewString()
	s.server = httptest.NewServer(s.upstream.handler(s.T()))

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	log := zap.NewNop()
	kv := database.NewMemoryKVStore()
	notifier := services.NewLogNotifier(log)
	catalog := services.NewCatalogLoader(services.CatalogLoaderConfig{
		URL:          s.server.URL + "/exec",
		FetchTimeout: time.Second,
		RetryDelay:   10 * time.Millisecond,
	}, nil, notifier, &services.BusyState{}, log)
	_, err := catalog.Load(ctx)
	s.Require().NoError(err)

	s.cart = database.NewCartStore(kv, "storefront:cart", log)
	submitter := services.NewOrderSubmitter(services.OrderSubmitterConfig{
		URL:          s.server.URL + "/orders",
		Ceiling:      time.Second,
		WriteTimeout: 2 * time.Second,
	}, nil, s.cart, log)
	auth := services.NewAuthService(services.AuthConfig{
		APIBase:  s.server.URL + "/api",
		TokenKey: "storefront:auth_token",
		UserKey:  "storefront:user_data",
	}, kv, nil, log)

	validator := controllers.NewRequestValidator()
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Session("storefront_session", false), apperrors.ErrorMiddleware())
	routes.RegisterRoutes(r, routes.Controllers{
		Storefront: controllers.NewStorefrontController(catalog, s.cart,
			services.NewCheckoutService(s.cart, catalog, services.NewOrderAssembler(), submitter, log),
			notifier, validator, log),
		Auth:   controllers.NewAuthController(auth, validator, log),
		Orders: controllers.NewOrderController(services.NewOrderLister(s.server.URL+"/orders", nil, log), log),
	}, auth, middleware.NewRateLimiter(ctx, middleware.PerMinute(600), 100, time.Minute))
	s.router = r
}

func (s *RoutesTestSuite) TearDownTest() {
	s.cancel()
	s.server.Close()
}

func (s *RoutesTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	return s.doAs(s.session, method, path, body)
}

func (s *RoutesTestSuite) doAs(session, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(middleware.SessionHeader, session)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RoutesTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"products":2`)
	s.NotEmpty(w.Header().Get(middleware.RequestIDHeader))
}

func (s *RoutesTestSuite) TestShoppingAndCheckout() {
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/cart/items", `{"product_id":3,"quantity":1}`).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/cart/items", `{"product_id":5,"quantity":2}`).Code)

	w := s.do(http.MethodGet, "/cart", "")
	var view models.CartView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &view))
	s.Equal(12.99, view.TotalValue)

	w = s.do(http.MethodPost, "/checkout", `{"name":"Ana","phone":"555","city":"Rosario","address":"Calle 1"}`)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp models.CheckoutResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("completed", resp.Outcome)
	s.Equal(12.99, resp.TotalValue)

	s.upstream.mu.Lock()
	s.Require().Len(s.upstream.orders, 1)
	order := s.upstream.orders[0]
	s.upstream.mu.Unlock()
	s.Equal(resp.Reference, order["reference"])
	s.Equal("Ana", order["nombre"])
	s.Equal("Rosario", order["ciudad"])
	s.Equal("Queso (x1) - 9.99 each; Pan (x2) - 1.50 each", order["productos"])
	s.Equal(12.99, order["valor_total"])

	s.Empty(s.cart.Get(database.WithSessionID(context.Background(), s.session)))

	w = s.do(http.MethodPost, "/checkout", `{"name":"Ana","phone":"555","city":"Rosario","address":"Calle 1"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RoutesTestSuite) TestAdminOrdersRequireAdmin() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/admin/orders", "").Code)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/auth/login", `{"username":"bob","password":"pw"}`).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/admin/orders", "").Code)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/auth/login", `{"username":"admin","password":"pw"}`).Code)
	w := s.do(http.MethodGet, "/admin/orders", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"pending_count"`)

	s.Equal(http.StatusOK, s.do(http.MethodPost, "/auth/logout", "").Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/admin/orders", "").Code)
}

func (s *RoutesTestSuite) TestPlacedOrderIsListedForAdmin() {
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/cart/items", `{"product_id":3,"quantity":2}`).Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/checkout",
		`{"name":"Ana","phone":"555","city":"Rosario","address":"Calle 1","notes":"timbre"}`).Code)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/auth/login", `{"username":"admin","password":"pw"}`).Code)
	w := s.do(http.MethodGet, "/admin/orders", "")
	s.Require().Equal(http.StatusOK, w.Code)

	var listing struct {
		Pending []models.OrderRecord `json:"pending"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &listing))
	s.Require().Len(listing.Pending, 1)
	order := listing.Pending[0]
	s.Equal("Ana", order.Name)
	s.Equal("555", order.Phone)
	s.Equal("Rosario", order.City)
	s.Equal("Calle 1", order.Address)
	s.Equal("timbre", order.Notes)
	s.Equal("Queso (x2) - 9.99 each", order.ProductsSummary)
	s.Equal(19.98, order.TotalValue)
}

func (s *RoutesTestSuite) TestSessionsAreIsolated() {
	other := uuid.NewString()

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/auth/login", `{"username":"admin","password":"pw"}`).Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/admin/orders", "").Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/cart/items", `{"product_id":3,"quantity":1}`).Code)

	// Another client sees neither the admin login nor the cart.
	s.Equal(http.StatusUnauthorized, s.doAs(other, http.MethodGet, "/admin/orders", "").Code)
	s.Equal(http.StatusUnauthorized, s.doAs(other, http.MethodGet, "/auth/me", "").Code)
	w := s.doAs(other, http.MethodGet, "/cart", "")
	var view models.CartView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &view))
	s.Empty(view.Items)

	// Nor can it log the admin out or empty the first cart.
	s.Equal(http.StatusOK, s.doAs(other, http.MethodPost, "/auth/logout", "").Code)
	s.Equal(http.StatusOK, s.doAs(other, http.MethodDelete, "/cart", "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/admin/orders", "").Code)
	w = s.do(http.MethodGet, "/cart", "")
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &view))
	s.Len(view.Items, 1)

	// A request without any session id gets a fresh one.
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.NotEqual(s.session, rec.Header().Get(middleware.SessionHeader))
}

func TestRoutes_RateLimitedCheckout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := zap.NewNop()
	kv := database.NewMemoryKVStore()
	catalog := services.NewCatalogLoader(services.CatalogLoaderConfig{}, nil, services.NewLogNotifier(log), &services.BusyState{}, log)
	cart := database.NewCartStore(kv, "cart", log)
	auth := services.NewAuthService(services.AuthConfig{TokenKey: "t", UserKey: "u"}, kv, nil, log)
	validator := controllers.NewRequestValidator()

	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	routes.RegisterRoutes(r, routes.Controllers{
		Storefront: controllers.NewStorefrontController(catalog, cart,
			services.NewCheckoutService(cart, catalog, services.NewOrderAssembler(), nil, log),
			nil, validator, log),
		Auth:   controllers.NewAuthController(auth, validator, log),
		Orders: controllers.NewOrderController(services.NewOrderLister("", nil, log), log),
	}, auth, middleware.NewRateLimiter(ctx, middleware.PerMinute(1), 1, time.Minute))

	body := `{"name":"Ana","phone":"555","city":"Rosario","address":"Calle 1"}`
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	// Empty cart on the first call; the second one never reaches the handler.
	require.Equal(t, []int{http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}
