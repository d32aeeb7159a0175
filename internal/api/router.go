package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/starford/fehu/internal/receiptservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced. Every route is
// scoped to the owner key resolved from the X-Owner-Key header.
func NewRouter(svc *receiptservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))
	r.Use(OwnerMiddleware)

	// Receipt lifecycle.
	r.Post("/receipts", h.Upload)
	r.Get("/receipts", h.ListReceipts)
	r.Get("/receipts/{id}", h.GetReceipt)
	r.Get("/receipts/{id}/items", h.ListItems)
	r.Get("/receipts/{id}/image", h.ReceiptImage)
	r.Delete("/receipts/{id}", h.DeleteReceipt)

	// Natural-language questions.
	r.Post("/ask", h.Ask)

	// Aggregates and downloads.
	r.Get("/summary", h.Summary)
	r.Get("/export/receipts.csv", h.ExportReceiptsCSV)
	r.Get("/export/items.csv", h.ExportItemsCSV)
	r.Get("/export/receipts.xlsx", h.ExportXLSX)

	return r
}
