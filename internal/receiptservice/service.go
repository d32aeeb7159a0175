// Package receiptservice coordinates OCR, parsing, the image archive, and
// the database behind one ingestion and query surface.
package receiptservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/starford/fehu/internal/apperr"
	"github.com/starford/fehu/internal/checksum"
	"github.com/starford/fehu/internal/export"
	"github.com/starford/fehu/internal/models"
	"github.com/starford/fehu/internal/ocr"
	"github.com/starford/fehu/internal/parser"
	"github.com/starford/fehu/internal/query"
	"github.com/starford/fehu/internal/storage"
	"github.com/starford/fehu/internal/store"
)

// Service owns the receipt lifecycle for all owners.
type Service struct {
	db      store.ReceiptStore
	archive storage.Archive
	ocr     ocr.Extractor
	ask     *query.Interpreter
	logger  *slog.Logger
}

// NewService wires the collaborating layers together.
func NewService(db store.ReceiptStore, archive storage.Archive, extractor ocr.Extractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:      db,
		archive: archive,
		ocr:     extractor,
		ask:     query.New(db),
		logger:  logger,
	}
}

// Ingest runs the full pipeline on one uploaded file: checksum dedup, OCR,
// parse, archive, insert. The stored record is returned with its line items
// loaded. Nothing is persisted when OCR yields no text.
func (s *Service) Ingest(ctx context.Context, owner string, data []byte, mimeType string) (*models.Receipt, error) {
	jobID := uuid.NewString()
	log := s.logger.With("job_id", jobID, "owner", owner, "mime_type", mimeType, "bytes", len(data))
	log.Info("ingest started")

	sum := checksum.Sum(data)
	if id, err := s.db.FindByChecksum(owner, sum); err == nil {
		log.Info("duplicate upload", "receipt_id", id)
		return nil, fmt.Errorf("%w: receipt %d", apperr.ErrDuplicate, id)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	text, err := s.ocr.ExtractText(ctx, data, mimeType)
	if err != nil {
		log.Error("ocr failed", "error", err)
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if len(parser.Normalize(text)) == 0 {
		log.Warn("no text extracted")
		return nil, apperr.ErrNoText
	}
	parsed := parser.Parse(text)

	imagePath := storage.PathFor(sum, mimeType)
	if err := s.archive.Write(imagePath, data); err != nil {
		return nil, err
	}

	id, err := s.db.InsertReceipt(owner, parsed, sum, imagePath)
	if err != nil {
		// Leave the archived image in place: checksum naming makes the
		// write idempotent on retry.
		return nil, err
	}

	rec, err := s.db.GetReceipt(owner, id)
	if err != nil {
		return nil, err
	}
	log.Info("ingest finished", "receipt_id", id, "store", rec.Store, "items", len(rec.Items))
	return rec, nil
}

// Ask answers a free-text question over the owner's receipts.
func (s *Service) Ask(_ context.Context, owner, question string) (string, error) {
	return s.ask.Answer(question, owner)
}

// ListReceipts returns the owner's records, most recent date first.
func (s *Service) ListReceipts(_ context.Context, owner string) ([]models.Receipt, error) {
	return s.db.ListReceipts(owner)
}

// GetReceipt returns one record with its line items.
func (s *Service) GetReceipt(_ context.Context, owner string, id int64) (*models.Receipt, error) {
	return s.db.GetReceipt(owner, id)
}

// ListItems returns the line items of one receipt.
func (s *Service) ListItems(_ context.Context, owner string, id int64) ([]models.LineItem, error) {
	rec, err := s.db.GetReceipt(owner, id)
	if err != nil {
		return nil, err
	}
	return rec.Items, nil
}

// DeleteReceipt removes a record and its archived image. Deleting an absent
// record is not an error.
func (s *Service) DeleteReceipt(_ context.Context, owner string, id int64) error {
	rec, err := s.db.GetReceipt(owner, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.db.DeleteReceipt(owner, id); err != nil {
		return err
	}
	if rec.ImagePath != "" {
		if err := s.archive.Delete(rec.ImagePath); err != nil {
			// The record is gone; a stray image file is only noise.
			s.logger.Warn("delete archived image", "receipt_id", id, "error", err)
		}
	}
	return nil
}

// ReceiptImage returns the archived original upload for a receipt.
func (s *Service) ReceiptImage(_ context.Context, owner string, id int64) ([]byte, error) {
	rec, err := s.db.GetReceipt(owner, id)
	if err != nil {
		return nil, err
	}
	if rec.ImagePath == "" {
		return nil, apperr.ErrNotFound
	}
	return s.archive.Read(rec.ImagePath)
}

// MonthlySummary returns per-month spending totals, newest month first.
func (s *Service) MonthlySummary(_ context.Context, owner string) ([]models.MonthTotal, error) {
	return s.db.MonthlyTotals(owner)
}

// ExportReceiptsCSV streams all of the owner's records as CSV.
func (s *Service) ExportReceiptsCSV(_ context.Context, owner string, w io.Writer) error {
	recs, err := s.db.ListReceipts(owner)
	if err != nil {
		return err
	}
	return export.ReceiptsCSV(w, recs)
}

// ExportItemsCSV streams all of the owner's line items as CSV.
func (s *Service) ExportItemsCSV(_ context.Context, owner string, w io.Writer) error {
	rows, err := s.itemRows(owner)
	if err != nil {
		return err
	}
	return export.ItemsCSV(w, rows)
}

// ExportXLSX renders all of the owner's records as a two-sheet workbook.
func (s *Service) ExportXLSX(_ context.Context, owner string) ([]byte, error) {
	recs, err := s.db.ListReceipts(owner)
	if err != nil {
		return nil, err
	}
	rows, err := s.itemRows(owner)
	if err != nil {
		return nil, err
	}
	return export.WorkbookXLSX(recs, rows)
}

func (s *Service) itemRows(owner string) ([]export.ItemRow, error) {
	recs, err := s.db.ListReceipts(owner)
	if err != nil {
		return nil, err
	}
	var rows []export.ItemRow
	for _, r := range recs {
		items, err := s.db.ListItems(owner, r.ID)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			rows = append(rows, export.ItemRow{
				ReceiptID: r.ID,
				Store:     r.Store,
				Date:      r.Date,
				Name:      it.Name,
				Price:     it.Price,
			})
		}
	}
	return rows, nil
}
