package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	app "github.com/shopops/backoffice/internal/app"
	"github.com/shopops/backoffice/internal/app/domain/catalog"
	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/domain/inventory"
	"github.com/shopops/backoffice/internal/app/domain/sales"
	"github.com/shopops/backoffice/internal/app/services/auth"
	identitysvc "github.com/shopops/backoffice/internal/app/services/identity"
	"github.com/shopops/backoffice/internal/httputil"
	"github.com/shopops/backoffice/internal/middleware"
)

func newTestAPI(t *testing.T) (*app.Application, *mux.Router) {
	t.Helper()
	application := app.New(app.Stores{}, app.Options{
		UploadDir: t.TempDir(),
		Auth:      auth.Config{Secret: "test-secret"},
	}, nil)
	router := mux.NewRouter()
	New(application, false, nil).Register(router)
	return application, router
}

func adminClaims() identity.Claims {
	return identity.Claims{UserID: "admin-1", Email: "admin@example.com", Role: identity.RoleAdmin, AuthMethod: identity.AuthLocal}
}

// do issues a request with the given claims already resolved, the way the
// session middleware would hand it to the router.
func do(t *testing.T, router *mux.Router, method, path string, body any, claims *identity.Claims) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), *claims))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestProductLifecycle(t *testing.T) {
	_, router := newTestAPI(t)
	admin := adminClaims()

	// Create a candidate product at $10 cost.
	rec := do(t, router, http.MethodPost, "/api/potential-products", map[string]any{
		"name":        "Desk Lamp",
		"costPerUnit": 10,
		"targetPrice": 25,
	}, &admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product status = %d, body %s", rec.Code, rec.Body)
	}
	product := decode[map[string]any](t, rec)
	productID := product["id"].(string)
	if product["createdBy"] != "admin-1" {
		t.Errorf("createdBy = %v, want the caller", product["createdBy"])
	}

	// Buy 5 units into inventory.
	rec = do(t, router, http.MethodPost, "/api/potential-products/"+productID+"/buy", map[string]any{
		"quantity": 5,
	}, &admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("buy status = %d, body %s", rec.Code, rec.Body)
	}
	item := decode[inventory.Item](t, rec)
	if item.QuantityAvailable != 5 || item.UnitCost != 10 {
		t.Errorf("lot = %+v, want 5 available at unit cost 10", item)
	}

	// The product is now marked bought.
	rec = do(t, router, http.MethodGet, "/api/potential-products/"+productID, nil, &admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("get product status = %d", rec.Code)
	}
	if got := decode[map[string]any](t, rec)["status"]; got != "bought" {
		t.Errorf("product status = %v, want bought", got)
	}

	// Sell all 5 at $20.
	rec = do(t, router, http.MethodPost, "/api/inventory/"+item.ID+"/sell", map[string]any{
		"quantitySold":        5,
		"sellingPricePerUnit": 20,
	}, &admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("sell status = %d, body %s", rec.Code, rec.Body)
	}
	sold := decode[struct {
		Order     sales.Order    `json:"order"`
		Inventory inventory.Item `json:"inventory"`
	}](t, rec)
	if sold.Order.TotalRevenue != 100 || sold.Order.COGS != 50 || sold.Order.Profit != 50 {
		t.Errorf("order money = revenue %v cogs %v profit %v, want 100/50/50",
			sold.Order.TotalRevenue, sold.Order.COGS, sold.Order.Profit)
	}
	if sold.Inventory.Status != inventory.StatusSoldOut {
		t.Errorf("inventory status = %s, want sold_out", sold.Inventory.Status)
	}

	// A sixth unit cannot be sold.
	rec = do(t, router, http.MethodPost, "/api/inventory/"+item.ID+"/sell", map[string]any{
		"quantitySold":        1,
		"sellingPricePerUnit": 20,
	}, &admin)
	if rec.Code != http.StatusConflict {
		t.Errorf("oversell status = %d, want 409, body %s", rec.Code, rec.Body)
	}
}

func TestAuthorization(t *testing.T) {
	_, router := newTestAPI(t)
	viewer := identity.Claims{UserID: "v-1", Role: identity.RoleViewer}
	warehouse := identity.Claims{UserID: "w-1", Role: identity.RoleWarehouse}

	cases := []struct {
		name   string
		claims *identity.Claims
		method string
		path   string
		want   int
	}{
		{"unauthenticated read", nil, http.MethodGet, "/api/potential-products", http.StatusUnauthorized},
		{"viewer can read", &viewer, http.MethodGet, "/api/potential-products", http.StatusOK},
		{"viewer cannot create", &viewer, http.MethodPost, "/api/potential-products", http.StatusForbidden},
		{"viewer cannot manage users", &viewer, http.MethodGet, "/api/users", http.StatusForbidden},
		{"warehouse cannot manage finance", &warehouse, http.MethodGet, "/api/bank-accounts", http.StatusOK},
		{"warehouse cannot create account", &warehouse, http.MethodPost, "/api/bank-accounts", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body any
			if tc.method == http.MethodPost {
				body = map[string]any{"name": "x"}
			}
			rec := do(t, router, tc.method, tc.path, body, tc.claims)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d, body %s", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

func TestValidationErrorShape(t *testing.T) {
	_, router := newTestAPI(t)
	admin := adminClaims()

	rec := do(t, router, http.MethodPost, "/api/potential-products", map[string]any{"name": "  "}, &admin)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decode[httputil.ErrorResponse](t, rec)
	if resp.Field != "name" || resp.Message == "" {
		t.Errorf("error response = %+v, want field name and a message", resp)
	}
}

func TestNotFound(t *testing.T) {
	_, router := newTestAPI(t)
	admin := adminClaims()

	rec := do(t, router, http.MethodGet, "/api/potential-products/nope", nil, &admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateOrder_RequiresInventoryID(t *testing.T) {
	_, router := newTestAPI(t)
	admin := adminClaims()

	rec := do(t, router, http.MethodPost, "/api/sales-orders", map[string]any{
		"quantitySold":        1,
		"sellingPricePerUnit": 5,
	}, &admin)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body)
	}
	if resp := decode[httputil.ErrorResponse](t, rec); resp.Field != "inventoryId" {
		t.Errorf("field = %q, want inventoryId", resp.Field)
	}
}

func TestSelfDeactivationBlocked(t *testing.T) {
	application, router := newTestAPI(t)
	admin := adminClaims()

	u, err := application.Identity.CreateUser(context.Background(), identitysvc.CreateUserInput{
		Email: "admin@example.com", Role: "admin",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	self := identity.Claims{UserID: u.ID, Role: identity.RoleAdmin}

	rec := do(t, router, http.MethodPost, "/api/users/"+u.ID+"/deactivate", nil, &self)
	if rec.Code != http.StatusConflict {
		t.Errorf("self deactivate status = %d, want 409", rec.Code)
	}

	// Another admin can deactivate the account.
	rec = do(t, router, http.MethodPost, "/api/users/"+u.ID+"/deactivate", nil, &admin)
	if rec.Code != http.StatusOK {
		t.Errorf("deactivate status = %d, want 200, body %s", rec.Code, rec.Body)
	}
}

func TestListEndpointsReturnEmptyArrays(t *testing.T) {
	_, router := newTestAPI(t)
	admin := adminClaims()

	for _, path := range []string{
		"/api/potential-products", "/api/inventory", "/api/sales-orders",
		"/api/bank-accounts", "/api/expenses", "/api/tasks", "/api/attachments",
		"/api/users", "/api/invitations",
	} {
		rec := do(t, router, http.MethodGet, path, nil, &admin)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, rec.Code)
			continue
		}
		if body := rec.Body.String(); body == "null\n" || body == "null" {
			t.Errorf("GET %s returned null, want []", path)
		}
	}
}

func TestDashboardSummary(t *testing.T) {
	application, router := newTestAPI(t)
	admin := adminClaims()

	if _, err := application.Catalog.Create(context.Background(), catalog.PotentialProduct{
		Name:        "Desk Lamp",
		CostPerUnit: 10,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rec := do(t, router, http.MethodGet, "/api/dashboard/summary", nil, &admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	sum := decode[map[string]any](t, rec)
	if sum["potentialProducts"].(float64) != 1 {
		t.Errorf("potentialProducts = %v, want 1", sum["potentialProducts"])
	}
}

func TestExchangeRates(t *testing.T) {
	_, router := newTestAPI(t)
	viewer := identity.Claims{UserID: "v-1", Role: identity.RoleViewer}

	rec := do(t, router, http.MethodGet, "/api/exchange-rates", nil, &viewer)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rates := decode[map[string]float64](t, rec)
	if rates["USD"] != 1 {
		t.Errorf("rates = %v, want USD pegged at 1", rates)
	}
}

func TestSessionFlowOverHTTP(t *testing.T) {
	application, router := newTestAPI(t)

	if _, err := application.Identity.CreateUser(context.Background(), identitysvc.CreateUserInput{
		Email: "admin@example.com", Role: "admin", Password: "hunter22!",
	}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	session := middleware.NewSessionMiddleware(application.Auth, nil, SkipAuthPaths())
	srv := httptest.NewServer(session.Handler(router))
	defer srv.Close()

	client := srv.Client()

	// Login sets the session cookie.
	resp, err := client.Post(srv.URL+"/api/auth/login", "application/json",
		bytes.NewBufferString(`{"email":"admin@example.com","password":"hunter22!"}`))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("login did not set a session cookie")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	authed := func(method, path string, withCookie bool) *http.Response {
		req, err := http.NewRequest(method, srv.URL+path, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		if withCookie {
			req.AddCookie(cookie)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		return resp
	}

	// The cookie authenticates API calls and the whoami endpoint.
	if resp := authed(http.MethodGet, "/api/potential-products", true); resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated list status = %d", resp.StatusCode)
	} else {
		resp.Body.Close()
	}
	if resp := authed(http.MethodGet, "/api/auth/user", true); resp.StatusCode != http.StatusOK {
		t.Errorf("auth/user status = %d", resp.StatusCode)
	} else {
		resp.Body.Close()
	}

	// Without the cookie the API refuses.
	if resp := authed(http.MethodGet, "/api/potential-products", false); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated list status = %d, want 401", resp.StatusCode)
	} else {
		resp.Body.Close()
	}

	// Logout invalidates the session server-side.
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/auth/logout", nil)
	req.AddCookie(cookie)
	if resp, err := client.Do(req); err != nil {
		t.Fatalf("logout: %v", err)
	} else {
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("logout status = %d, want 204", resp.StatusCode)
		}
	}
	if resp := authed(http.MethodGet, "/api/potential-products", true); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("post-logout list status = %d, want 401", resp.StatusCode)
	} else {
		resp.Body.Close()
	}
}

func TestBearerTokenAuth(t *testing.T) {
	application, router := newTestAPI(t)

	if _, err := application.Identity.CreateUser(context.Background(), identitysvc.CreateUserInput{
		Email: "admin@example.com", Role: "admin", Password: "hunter22!",
	}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	_, token, err := application.Auth.Login(context.Background(), "admin@example.com", "hunter22!")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	session := middleware.NewSessionMiddleware(application.Auth, nil, SkipAuthPaths())
	handler := session.Handler(router)

	req := httptest.NewRequest(http.MethodGet, "/api/potential-products", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("bearer auth status = %d, body %s", rec.Code, rec.Body)
	}
}
