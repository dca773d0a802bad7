// Package app wires stores and services into one application.
package app

import (
	"github.com/shopops/backoffice/internal/app/services/auth"
	"github.com/shopops/backoffice/internal/app/services/board"
	catalogsvc "github.com/shopops/backoffice/internal/app/services/catalog"
	"github.com/shopops/backoffice/internal/app/services/files"
	financesvc "github.com/shopops/backoffice/internal/app/services/finance"
	identitysvc "github.com/shopops/backoffice/internal/app/services/identity"
	"github.com/shopops/backoffice/internal/app/services/reports"
	salessvc "github.com/shopops/backoffice/internal/app/services/sales"
	"github.com/shopops/backoffice/internal/app/services/stock"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/app/storage/memory"
	"github.com/shopops/backoffice/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Catalog     storage.CatalogStore
	Inventory   storage.InventoryStore
	Sales       storage.SalesStore
	Bank        storage.BankStore
	Expenses    storage.ExpenseStore
	Tasks       storage.TaskStore
	Attachments storage.AttachmentStore
	Users       storage.UserStore
}

// Options carries the non-store wiring inputs.
type Options struct {
	Auth      auth.Config
	UploadDir string
}

// Application ties the domain services together.
type Application struct {
	log *logger.Logger

	Catalog   *catalogsvc.Service
	Inventory *stock.Service
	Sales     *salessvc.Service
	Finance   *financesvc.Service
	Board     *board.Service
	Files     *files.Service
	Identity  *identitysvc.Service
	Auth      *auth.Service
	Reports   *reports.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Catalog == nil {
		stores.Catalog = mem
	}
	if stores.Inventory == nil {
		stores.Inventory = mem
	}
	if stores.Sales == nil {
		stores.Sales = mem
	}
	if stores.Bank == nil {
		stores.Bank = mem
	}
	if stores.Expenses == nil {
		stores.Expenses = mem
	}
	if stores.Tasks == nil {
		stores.Tasks = mem
	}
	if stores.Attachments == nil {
		stores.Attachments = mem
	}
	if stores.Users == nil {
		stores.Users = mem
	}

	uploadDir := opts.UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	return &Application{
		log:       log,
		Catalog:   catalogsvc.New(stores.Catalog, stores.Inventory, log),
		Inventory: stock.New(stores.Inventory, log),
		Sales:     salessvc.New(stores.Sales, stores.Inventory, log),
		Finance:   financesvc.New(stores.Bank, stores.Expenses, log),
		Board:     board.New(stores.Tasks, log),
		Files:     files.New(stores.Attachments, uploadDir, log),
		Identity:  identitysvc.New(stores.Users, log),
		Auth:      auth.New(stores.Users, opts.Auth, log),
		Reports:   reports.New(stores.Catalog, stores.Inventory, stores.Sales, stores.Bank, stores.Expenses, log),
	}
}
