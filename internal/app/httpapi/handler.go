// Package httpapi exposes the REST API over gorilla/mux. Handlers decode and
// validate at the boundary, call one service operation, and map errors to
// statuses through httputil.WriteError.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	app "github.com/shopops/backoffice/internal/app"
	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/middleware"
	"github.com/shopops/backoffice/pkg/logger"
)

// Handler bundles the HTTP endpoints for the application services.
type Handler struct {
	app           *app.Application
	log           *logger.Logger
	secureCookies bool
}

// New creates the API handler. secureCookies marks session cookies Secure,
// which production deployments behind TLS should enable.
func New(application *app.Application, secureCookies bool, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	return &Handler{app: application, log: log, secureCookies: secureCookies}
}

// SkipAuthPaths lists the endpoints the session middleware must let through
// unauthenticated.
func SkipAuthPaths() []string {
	return []string{
		"/api/auth/login",
		"/api/auth/login/oidc",
		"/api/auth/callback",
		"/api/auth/user",
		"/api/auth/logout",
		"/api/invitations/accept",
	}
}

// Register attaches every API route to the router.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	// Auth.
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/login/oidc", h.beginOIDC).Methods(http.MethodGet)
	api.HandleFunc("/auth/callback", h.oidcCallback).Methods(http.MethodGet)
	api.HandleFunc("/auth/user", h.currentUser).Methods(http.MethodGet)
	api.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)

	// Potential products.
	api.HandleFunc("/potential-products", h.view(h.listProducts)).Methods(http.MethodGet)
	api.HandleFunc("/potential-products", h.can(identity.CapManageCatalog, h.createProduct)).Methods(http.MethodPost)
	api.HandleFunc("/potential-products/{id}", h.view(h.getProduct)).Methods(http.MethodGet)
	api.HandleFunc("/potential-products/{id}", h.can(identity.CapManageCatalog, h.updateProduct)).Methods(http.MethodPut)
	api.HandleFunc("/potential-products/{id}", h.can(identity.CapManageCatalog, h.deleteProduct)).Methods(http.MethodDelete)
	api.HandleFunc("/potential-products/{id}/buy", h.can(identity.CapManageCatalog, h.buyProduct)).Methods(http.MethodPost)
	api.HandleFunc("/potential-products/{id}/image", h.can(identity.CapUploadFiles, h.productImage)).Methods(http.MethodPost)

	// Inventory.
	api.HandleFunc("/inventory", h.view(h.listInventory)).Methods(http.MethodGet)
	api.HandleFunc("/inventory", h.can(identity.CapManageStock, h.createInventory)).Methods(http.MethodPost)
	api.HandleFunc("/inventory/low-stock", h.view(h.listLowStock)).Methods(http.MethodGet)
	api.HandleFunc("/inventory/{id}", h.view(h.getInventory)).Methods(http.MethodGet)
	api.HandleFunc("/inventory/{id}", h.can(identity.CapManageStock, h.updateInventory)).Methods(http.MethodPut)
	api.HandleFunc("/inventory/{id}", h.can(identity.CapManageStock, h.deleteInventory)).Methods(http.MethodDelete)
	api.HandleFunc("/inventory/{id}/sell", h.can(identity.CapRecordSales, h.sellInventory)).Methods(http.MethodPost)
	api.HandleFunc("/inventory/{id}/image", h.can(identity.CapUploadFiles, h.inventoryImage)).Methods(http.MethodPost)

	// Sales orders.
	api.HandleFunc("/sales-orders", h.view(h.listOrders)).Methods(http.MethodGet)
	api.HandleFunc("/sales-orders", h.can(identity.CapRecordSales, h.createOrder)).Methods(http.MethodPost)
	api.HandleFunc("/sales-orders/{id}", h.view(h.getOrder)).Methods(http.MethodGet)
	api.HandleFunc("/sales-orders/{id}", h.can(identity.CapRecordSales, h.updateOrder)).Methods(http.MethodPut)
	api.HandleFunc("/sales-orders/{id}", h.can(identity.CapRecordSales, h.deleteOrder)).Methods(http.MethodDelete)

	// Bank accounts and expenses.
	api.HandleFunc("/bank-accounts", h.view(h.listAccounts)).Methods(http.MethodGet)
	api.HandleFunc("/bank-accounts", h.can(identity.CapManageFinance, h.createAccount)).Methods(http.MethodPost)
	api.HandleFunc("/bank-accounts/{id}", h.view(h.getAccount)).Methods(http.MethodGet)
	api.HandleFunc("/bank-accounts/{id}", h.can(identity.CapManageFinance, h.updateAccount)).Methods(http.MethodPut)
	api.HandleFunc("/bank-accounts/{id}", h.can(identity.CapManageFinance, h.deleteAccount)).Methods(http.MethodDelete)
	api.HandleFunc("/bank-accounts/{id}/adjust", h.can(identity.CapManageFinance, h.adjustAccount)).Methods(http.MethodPost)

	api.HandleFunc("/expenses", h.view(h.listExpenses)).Methods(http.MethodGet)
	api.HandleFunc("/expenses", h.can(identity.CapManageFinance, h.createExpense)).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id}", h.view(h.getExpense)).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", h.can(identity.CapManageFinance, h.updateExpense)).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{id}", h.can(identity.CapManageFinance, h.deleteExpense)).Methods(http.MethodDelete)

	// Tasks.
	api.HandleFunc("/tasks", h.view(h.listTasks)).Methods(http.MethodGet)
	api.HandleFunc("/tasks", h.can(identity.CapManageTasks, h.createTask)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", h.view(h.getTask)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", h.can(identity.CapManageTasks, h.updateTask)).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", h.can(identity.CapManageTasks, h.deleteTask)).Methods(http.MethodDelete)

	// Attachments.
	api.HandleFunc("/attachments", h.view(h.listAttachments)).Methods(http.MethodGet)
	api.HandleFunc("/attachments/upload", h.can(identity.CapUploadFiles, h.uploadAttachment)).Methods(http.MethodPost)
	api.HandleFunc("/attachments/{id}", h.view(h.getAttachment)).Methods(http.MethodGet)
	api.HandleFunc("/attachments/{id}", h.can(identity.CapUploadFiles, h.deleteAttachment)).Methods(http.MethodDelete)

	// Users and invitations.
	api.HandleFunc("/users", h.can(identity.CapManageUsers, h.listUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users", h.can(identity.CapManageUsers, h.createUser)).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", h.can(identity.CapManageUsers, h.getUser)).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.can(identity.CapManageUsers, h.updateUser)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.can(identity.CapManageUsers, h.deleteUser)).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/deactivate", h.can(identity.CapManageUsers, h.deactivateUser)).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/reactivate", h.can(identity.CapManageUsers, h.reactivateUser)).Methods(http.MethodPost)

	api.HandleFunc("/invitations", h.can(identity.CapManageUsers, h.listInvitations)).Methods(http.MethodGet)
	api.HandleFunc("/invitations", h.can(identity.CapManageUsers, h.createInvitation)).Methods(http.MethodPost)
	api.HandleFunc("/invitations/accept", h.acceptInvitation).Methods(http.MethodPost)
	api.HandleFunc("/invitations/{id}", h.can(identity.CapManageUsers, h.deleteInvitation)).Methods(http.MethodDelete)
	api.HandleFunc("/invitations/{id}/resend", h.can(identity.CapManageUsers, h.resendInvitation)).Methods(http.MethodPost)

	// Reference data and reporting.
	api.HandleFunc("/exchange-rates", h.view(h.exchangeRates)).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/summary", h.view(h.dashboard)).Methods(http.MethodGet)

	// Uploaded files are served statically under /uploads.
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.app.Files.Root()))))
}

// view gates a handler on read access.
func (h *Handler) view(next http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireCapability(identity.CapViewData, next)
}

// can gates a handler on a specific capability.
func (h *Handler) can(c identity.Capability, next http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireCapability(c, next)
}
