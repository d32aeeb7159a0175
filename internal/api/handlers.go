package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/fehu/internal/apperr"
	"github.com/starford/fehu/internal/models"
	"github.com/starford/fehu/internal/receiptservice"
)

const maxUploadBytes = 20 << 20 // 20 MB

// Handler holds API route handlers.
type Handler struct {
	svc *receiptservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *receiptservice.Service) *Handler {
	return &Handler{svc: svc}
}

func receiptID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// Upload handles POST /api/receipts (multipart/form-data, field "file").
//
//	@Summary		Upload a receipt file for OCR and parsing
//	@Tags			receipts
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Receipt image or PDF"
//	@Success		201		{object}	models.Receipt
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/receipts [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("empty file"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	rec, err := h.svc.Ingest(r.Context(), ownerFrom(r.Context()), data, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNoText):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("no text extracted"))
		case errors.Is(err, apperr.ErrDuplicate):
			writeJSON(w, http.StatusConflict, errorBody("receipt already uploaded"))
		default:
			slog.Error("upload failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// ListReceipts handles GET /api/receipts.
//
//	@Summary		List receipts, most recent date first
//	@Tags			receipts
//	@Produce		json
//	@Success		200	{object}	ReceiptListResponse
//	@Security		BearerAuth
//	@Router			/receipts [get]
func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListReceipts(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		slog.Error("list receipts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if recs == nil {
		recs = []models.Receipt{}
	}
	writeJSON(w, http.StatusOK, ReceiptListResponse{Receipts: recs, Total: len(recs)})
}

// GetReceipt handles GET /api/receipts/{id}.
//
//	@Summary		Get a single receipt with its line items
//	@Tags			receipts
//	@Produce		json
//	@Param			id	path		int	true	"Receipt ID"
//	@Success		200	{object}	models.Receipt
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/receipts/{id} [get]
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := receiptID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid receipt id"))
		return
	}
	rec, err := h.svc.GetReceipt(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get receipt failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListItems handles GET /api/receipts/{id}/items.
//
//	@Summary		List the line items of one receipt
//	@Tags			receipts
//	@Produce		json
//	@Param			id	path		int	true	"Receipt ID"
//	@Success		200	{object}	ItemListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/receipts/{id}/items [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := receiptID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid receipt id"))
		return
	}
	items, err := h.svc.ListItems(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("list items failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if items == nil {
		items = []models.LineItem{}
	}
	writeJSON(w, http.StatusOK, ItemListResponse{Items: items})
}

// ReceiptImage handles GET /api/receipts/{id}/image.
//
//	@Summary		Download the archived original upload
//	@Tags			receipts
//	@Produce		octet-stream
//	@Param			id	path	int	true	"Receipt ID"
//	@Success		200
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/receipts/{id}/image [get]
func (h *Handler) ReceiptImage(w http.ResponseWriter, r *http.Request) {
	id, ok := receiptID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid receipt id"))
		return
	}
	data, err := h.svc.ReceiptImage(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("receipt image failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteReceipt handles DELETE /api/receipts/{id}.
//
//	@Summary		Delete a receipt and its archived image
//	@Tags			receipts
//	@Param			id	path	int	true	"Receipt ID"
//	@Success		204	"Receipt deleted"
//	@Security		BearerAuth
//	@Router			/receipts/{id} [delete]
func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := receiptID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid receipt id"))
		return
	}
	if err := h.svc.DeleteReceipt(r.Context(), ownerFrom(r.Context()), id); err != nil {
		slog.Error("delete receipt failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Ask handles POST /api/ask.
//
//	@Summary		Ask a free-text question over stored receipts
//	@Tags			ask
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AskRequest	true	"Question"
//	@Success		200		{object}	AskResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ask [post]
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	answer, err := h.svc.Ask(r.Context(), ownerFrom(r.Context()), req.Question)
	if err != nil {
		slog.Error("ask failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{Answer: answer})
}

// Summary handles GET /api/summary.
//
//	@Summary		Monthly spending totals, newest month first
//	@Tags			summary
//	@Produce		json
//	@Success		200	{object}	SummaryResponse
//	@Security		BearerAuth
//	@Router			/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	months, err := h.svc.MonthlySummary(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		slog.Error("summary failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if months == nil {
		months = []models.MonthTotal{}
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Months: months})
}

// ExportReceiptsCSV handles GET /api/export/receipts.csv.
func (h *Handler) ExportReceiptsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="receipts.csv"`)
	if err := h.svc.ExportReceiptsCSV(r.Context(), ownerFrom(r.Context()), w); err != nil {
		slog.Error("export receipts csv failed", slog.String("error", err.Error()))
	}
}

// ExportItemsCSV handles GET /api/export/items.csv.
func (h *Handler) ExportItemsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="items.csv"`)
	if err := h.svc.ExportItemsCSV(r.Context(), ownerFrom(r.Context()), w); err != nil {
		slog.Error("export items csv failed", slog.String("error", err.Error()))
	}
}

// ExportXLSX handles GET /api/export/receipts.xlsx.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportXLSX(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		slog.Error("export xlsx failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="receipts.xlsx"`)
	_, _ = w.Write(data)
}
