package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/fehu/internal/apperr"
	"github.com/starford/fehu/internal/models"
)

// ReceiptStore defines the persistence capability consumed by the service
// and query layers. Depend on this interface rather than *DB so tests can
// substitute fakes.
type ReceiptStore interface {
	InsertReceipt(owner string, parsed models.ParsedReceipt, checksum, imagePath string) (int64, error)
	ListReceipts(owner string) ([]models.Receipt, error)
	GetReceipt(owner string, id int64) (*models.Receipt, error)
	ListItems(owner string, receiptID int64) ([]models.LineItem, error)
	DeleteReceipt(owner string, id int64) error
	FindByChecksum(owner, checksum string) (int64, error)
	MonthlyTotals(owner string) ([]models.MonthTotal, error)
	Close() error
}

var _ ReceiptStore = (*DB)(nil)

// InsertReceipt stores a parsed receipt and its items in one transaction
// and returns the new record id. The parsed value is stored as-is: the
// record's lifecycle as a pure value ends here.
func (db *DB) InsertReceipt(owner string, parsed models.ParsedReceipt, checksum, imagePath string) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`
		INSERT INTO receipts (owner_key, store, date, total, checksum, image_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, owner, parsed.Store, parsed.Date, nullFloat(parsed.Total), checksum, imagePath, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("store: insert receipt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}

	if len(parsed.Items) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO items (receipt_id, name, price) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("store: prepare item insert: %w", err)
		}
		defer stmt.Close()
		for _, it := range parsed.Items {
			if _, err := stmt.Exec(id, it.Name, it.Price); err != nil {
				return 0, fmt.Errorf("store: insert item: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return id, nil
}

// ListReceipts returns the owner's receipts most-recent-date-first.
// Dates are stored verbatim, so the ordering is lexicographic; records
// without a date sort last.
func (db *DB) ListReceipts(owner string) ([]models.Receipt, error) {
	rows, err := db.conn.Query(`
		SELECT id, store, date, total, checksum, created_at
		FROM receipts
		WHERE owner_key = ?
		ORDER BY date DESC, id DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: list receipts: %w", err)
	}
	defer rows.Close()

	var out []models.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows, owner)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetReceipt returns one receipt with its items loaded, or
// apperr.ErrNotFound.
func (db *DB) GetReceipt(owner string, id int64) (*models.Receipt, error) {
	row := db.conn.QueryRow(`
		SELECT id, store, date, total, checksum, image_path, created_at
		FROM receipts
		WHERE owner_key = ? AND id = ?
	`, owner, id)

	var r models.Receipt
	var total sql.NullFloat64
	err := row.Scan(&r.ID, &r.Store, &r.Date, &total, &r.Checksum, &r.ImagePath, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get receipt: %w", err)
	}
	r.OwnerKey = owner
	if total.Valid {
		r.Total = &total.Float64
	}
	r.Items, err = db.ListItems(owner, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListItems returns the items of one receipt, insertion order preserved.
// The receipt must belong to owner; an unknown or foreign id yields an
// empty slice, not an error.
func (db *DB) ListItems(owner string, receiptID int64) ([]models.LineItem, error) {
	rows, err := db.conn.Query(`
		SELECT i.name, i.price
		FROM items i
		JOIN receipts r ON r.id = i.receipt_id
		WHERE r.owner_key = ? AND i.receipt_id = ?
		ORDER BY i.id
	`, owner, receiptID)
	if err != nil {
		return nil, fmt.Errorf("store: list items: %w", err)
	}
	defer rows.Close()

	var out []models.LineItem
	for rows.Next() {
		var it models.LineItem
		if err := rows.Scan(&it.Name, &it.Price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// DeleteReceipt removes a receipt and its items. Deleting an id that does
// not exist (or belongs to another owner) is not an error.
func (db *DB) DeleteReceipt(owner string, id int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`
		DELETE FROM items WHERE receipt_id IN
			(SELECT id FROM receipts WHERE owner_key = ? AND id = ?)
	`, owner, id)
	_, _ = tx.Exec(`DELETE FROM receipts WHERE owner_key = ? AND id = ?`, owner, id)

	return tx.Commit()
}

// FindByChecksum returns the id of the owner's receipt with the given
// content checksum, or apperr.ErrNotFound.
func (db *DB) FindByChecksum(owner, checksum string) (int64, error) {
	var id int64
	err := db.conn.QueryRow(`
		SELECT id FROM receipts WHERE owner_key = ? AND checksum = ? LIMIT 1
	`, owner, checksum).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("store: find by checksum: %w", err)
	}
	return id, nil
}

// MonthlyTotals sums receipt totals per YYYY-MM date prefix, newest first.
// Records with no total or a date too short for a month prefix are skipped.
func (db *DB) MonthlyTotals(owner string) ([]models.MonthTotal, error) {
	rows, err := db.conn.Query(`
		SELECT substr(date, 1, 7) AS month, SUM(total)
		FROM receipts
		WHERE owner_key = ? AND total IS NOT NULL AND length(date) >= 7
		GROUP BY month
		ORDER BY month DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: monthly totals: %w", err)
	}
	defer rows.Close()

	var out []models.MonthTotal
	for rows.Next() {
		var m models.MonthTotal
		if err := rows.Scan(&m.Month, &m.Total); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanReceipt(rows *sql.Rows, owner string) (models.Receipt, error) {
	var r models.Receipt
	var total sql.NullFloat64
	if err := rows.Scan(&r.ID, &r.Store, &r.Date, &total, &r.Checksum, &r.CreatedAt); err != nil {
		return r, fmt.Errorf("store: scan receipt: %w", err)
	}
	r.OwnerKey = owner
	if total.Valid {
		r.Total = &total.Float64
	}
	return r, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
