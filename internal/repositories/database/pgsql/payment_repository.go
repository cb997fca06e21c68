package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finwage/payroll_backend/internal/apperrors"
	"github.com/finwage/payroll_backend/internal/core/domain"
	portsrepo "github.com/finwage/payroll_backend/internal/core/ports/repositories"
)

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment, line item,
// document and history data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryFacade
var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `
	payment_id, status, payment_month, payment_year, description, total_amount,
	payment_date, reference_number, cancellation_reason, cancelled_by, cancelled_at,
	created_at, created_by, last_updated_at, last_updated_by
`

const lineItemColumns = `
	line_item_id, payment_id, assignment_id, employee_id, work_activity_id, assignment_date,
	rate, gross_amount, completion_percentage, employee_pf, voluntary_pf, employer_pf, pf_amount, net_amount,
	snapshot_employee_name, snapshot_activity_name, snapshot_completion_percentage,
	snapshot_gross_amount, snapshot_employee_pf, snapshot_voluntary_pf,
	snapshot_employer_pf, snapshot_pf_amount, snapshot_net_amount,
	created_at, created_by, last_updated_at, last_updated_by
`

// FindPaymentByID retrieves a payment with its line items and documents.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`

	payment, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query payment %s: %w", paymentID, err)
	}

	items, err := r.findLineItemsByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	payment.LineItems = items

	docs, err := r.findDocumentsByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	payment.Documents = docs

	return payment, nil
}

// ListPayments retrieves payment headers matching the filter, newest first.
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, filter portsrepo.ListPaymentsFilter) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
	args := []any{}
	conditions := ""

	appendCondition := func(clause string, value any) {
		args = append(args, value)
		placeholder := "$" + strconv.Itoa(len(args))
		if conditions == "" {
			conditions = " WHERE " + clause + placeholder
		} else {
			conditions += " AND " + clause + placeholder
		}
	}

	if filter.Status != nil {
		appendCondition("status = ", string(*filter.Status))
	}
	if filter.Month != nil {
		appendCondition("payment_month = ", *filter.Month)
	}
	if filter.Year != nil {
		appendCondition("payment_year = ", *filter.Year)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query += conditions + " ORDER BY created_at DESC, payment_id DESC LIMIT " + limitPlaceholder + " OFFSET " + offsetPlaceholder + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}

// FindDocumentByID retrieves one document's metadata, scoped to its payment.
func (r *PgxPaymentRepository) FindDocumentByID(ctx context.Context, paymentID, documentID string) (*domain.Document, error) {
	query := `
		SELECT document_id, payment_id, file_name, file_size, content_type, document_type, description, storage_path, uploaded_by, uploaded_at
		FROM documents
		WHERE payment_id = $1 AND document_id = $2;
	`
	var doc domain.Document
	err := r.Pool.QueryRow(ctx, query, paymentID, documentID).Scan(
		&doc.DocumentID,
		&doc.PaymentID,
		&doc.FileName,
		&doc.FileSize,
		&doc.ContentType,
		&doc.DocumentType,
		&doc.Description,
		&doc.StoragePath,
		&doc.UploadedBy,
		&doc.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", documentID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query document %s: %w", documentID, err)
	}
	return &doc, nil
}

// SavePayment inserts a new draft payment together with its CREATED entry.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment, entry domain.HistoryEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, query,
		payment.PaymentID,
		string(payment.Status),
		payment.PaymentMonth,
		payment.PaymentYear,
		payment.Description,
		payment.TotalAmount,
		nullTime(payment.PaymentDate),
		payment.ReferenceNumber,
		payment.CancellationReason,
		payment.CancelledBy,
		nullTime(payment.CancelledAt),
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment %s: %w", payment.PaymentID, err)
	}

	if err := insertHistoryTx(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveLineItem inserts a line item, updates the owning payment's derived total,
// and appends the history entry, all in one transaction.
func (r *PgxPaymentRepository) SaveLineItem(ctx context.Context, item domain.LineItem, totalAmount decimal.Decimal, entry domain.HistoryEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO line_items (` + lineItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27);
	`
	_, err = tx.Exec(ctx, query, lineItemArgs(item)...)
	if err != nil {
		return fmt.Errorf("failed to insert line item %s: %w", item.LineItemID, err)
	}

	if err := updatePaymentTotalTx(ctx, tx, item.PaymentID, totalAmount, entry); err != nil {
		return err
	}
	if err := insertHistoryTx(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// DeleteLineItem removes a line item, updates the derived total, and appends
// the history entry.
func (r *PgxPaymentRepository) DeleteLineItem(ctx context.Context, paymentID, lineItemID string, totalAmount decimal.Decimal, entry domain.HistoryEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `DELETE FROM line_items WHERE payment_id = $1 AND line_item_id = $2;`, paymentID, lineItemID)
	if err != nil {
		return fmt.Errorf("failed to delete line item %s: %w", lineItemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("line item %s: %w", lineItemID, apperrors.ErrNotFound)
	}

	if err := updatePaymentTotalTx(ctx, tx, paymentID, totalAmount, entry); err != nil {
		return err
	}
	if err := insertHistoryTx(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdatePayment rewrites a payment's mutable columns and appends the history entry.
func (r *PgxPaymentRepository) UpdatePayment(ctx context.Context, payment domain.Payment, entry domain.HistoryEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := updatePaymentTx(ctx, tx, payment); err != nil {
		return err
	}
	if err := insertHistoryTx(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdatePaymentAndLineItems rewrites the payment and every given line item in
// one transaction. Used at submission to persist snapshots atomically with the
// status change.
func (r *PgxPaymentRepository) UpdatePaymentAndLineItems(ctx context.Context, payment domain.Payment, items []domain.LineItem, entry domain.HistoryEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := updatePaymentTx(ctx, tx, payment); err != nil {
		return err
	}

	itemQuery := `
		UPDATE line_items SET
			rate = $3, gross_amount = $4, completion_percentage = $5,
			employee_pf = $6, voluntary_pf = $7, employer_pf = $8, pf_amount = $9, net_amount = $10,
			snapshot_employee_name = $11, snapshot_activity_name = $12, snapshot_completion_percentage = $13,
			snapshot_gross_amount = $14, snapshot_employee_pf = $15, snapshot_voluntary_pf = $16,
			snapshot_employer_pf = $17, snapshot_pf_amount = $18, snapshot_net_amount = $19,
			last_updated_at = $20, last_updated_by = $21
		WHERE payment_id = $1 AND line_item_id = $2;
	`
	batch := &pgx.Batch{}
	for i := range items {
		item := items[i]
		batch.Queue(itemQuery,
			item.PaymentID,
			item.LineItemID,
			item.Rate,
			item.GrossAmount,
			item.CompletionPercentage,
			item.EmployeePf,
			item.VoluntaryPf,
			item.EmployerPf,
			item.PfAmount,
			item.NetAmount,
			nullStr(item.SnapshotEmployeeName),
			nullStr(item.SnapshotActivityName),
			nullDec(item.SnapshotCompletionPercentage),
			nullDec(item.SnapshotGrossAmount),
			nullDec(item.SnapshotEmployeePf),
			nullDec(item.SnapshotVoluntaryPf),
			nullDec(item.SnapshotEmployerPf),
			nullDec(item.SnapshotPfAmount),
			nullDec(item.SnapshotNetAmount),
			item.LastUpdatedAt,
			item.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to update line items for payment %s: %w", payment.PaymentID, err)
	}

	if err := insertHistoryTx(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// DeletePayment destroys a payment with its line items, documents and history.
func (r *PgxPaymentRepository) DeletePayment(ctx context.Context, paymentID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM payment_history WHERE payment_id = $1;`, paymentID); err != nil {
		return fmt.Errorf("failed to delete history for payment %s: %w", paymentID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE payment_id = $1;`, paymentID); err != nil {
		return fmt.Errorf("failed to delete documents for payment %s: %w", paymentID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE payment_id = $1;`, paymentID); err != nil {
		return fmt.Errorf("failed to delete line items for payment %s: %w", paymentID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM payments WHERE payment_id = $1;`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment %s: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
	}
	return r.Commit(ctx, tx)
}

// SaveDocument inserts document metadata and appends the history entry.
func (r *PgxPaymentRepository) SaveDocument(ctx context.Context, doc domain.Document, entry domain.HistoryEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO documents (document_id, payment_id, file_name, file_size, content_type, document_type, description, storage_path, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, query,
		doc.DocumentID,
		doc.PaymentID,
		doc.FileName,
		doc.FileSize,
		doc.ContentType,
		string(doc.DocumentType),
		doc.Description,
		doc.StoragePath,
		doc.UploadedBy,
		doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.DocumentID, err)
	}

	if err := insertHistoryTx(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// DeleteDocument removes document metadata and appends the history entry.
func (r *PgxPaymentRepository) DeleteDocument(ctx context.Context, paymentID, documentID string, entry domain.HistoryEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE payment_id = $1 AND document_id = $2;`, paymentID, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", documentID, apperrors.ErrNotFound)
	}

	if err := insertHistoryTx(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindHistoryByPaymentID returns a payment's history, oldest first.
func (r *PgxPaymentRepository) FindHistoryByPaymentID(ctx context.Context, paymentID string) ([]domain.HistoryEntry, error) {
	query := `
		SELECT history_id, payment_id, change_type, previous_status, new_status,
		       previous_amount, new_amount, remarks, change_description, changed_by, changed_at
		FROM payment_history
		WHERE payment_id = $1
		ORDER BY changed_at ASC, history_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var entry domain.HistoryEntry
		var prevStatus, newStatus sql.NullString
		var prevAmount, newAmount decimal.NullDecimal
		err := rows.Scan(
			&entry.HistoryID,
			&entry.PaymentID,
			&entry.ChangeType,
			&prevStatus,
			&newStatus,
			&prevAmount,
			&newAmount,
			&entry.Remarks,
			&entry.ChangeDescription,
			&entry.ChangedBy,
			&entry.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entry.PreviousStatus = statusPtr(prevStatus)
		entry.NewStatus = statusPtr(newStatus)
		entry.PreviousAmount = decPtr(prevAmount)
		entry.NewAmount = decPtr(newAmount)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return entries, nil
}

// --- internal helpers ---

func (r *PgxPaymentRepository) findLineItemsByPaymentID(ctx context.Context, paymentID string) ([]domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items WHERE payment_id = $1 ORDER BY created_at ASC, line_item_id ASC;`

	rows, err := r.Pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items for payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line item rows: %w", err)
	}
	return items, nil
}

func (r *PgxPaymentRepository) findDocumentsByPaymentID(ctx context.Context, paymentID string) ([]domain.Document, error) {
	query := `
		SELECT document_id, payment_id, file_name, file_size, content_type, document_type, description, storage_path, uploaded_by, uploaded_at
		FROM documents
		WHERE payment_id = $1
		ORDER BY uploaded_at ASC, document_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents for payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		var doc domain.Document
		err := rows.Scan(
			&doc.DocumentID,
			&doc.PaymentID,
			&doc.FileName,
			&doc.FileSize,
			&doc.ContentType,
			&doc.DocumentType,
			&doc.Description,
			&doc.StoragePath,
			&doc.UploadedBy,
			&doc.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return docs, nil
}

func updatePaymentTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	query := `
		UPDATE payments SET
			status = $2, description = $3, total_amount = $4,
			payment_date = $5, reference_number = $6,
			cancellation_reason = $7, cancelled_by = $8, cancelled_at = $9,
			last_updated_at = $10, last_updated_by = $11
		WHERE payment_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		payment.PaymentID,
		string(payment.Status),
		payment.Description,
		payment.TotalAmount,
		nullTime(payment.PaymentDate),
		payment.ReferenceNumber,
		payment.CancellationReason,
		payment.CancelledBy,
		nullTime(payment.CancelledAt),
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", payment.PaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s: %w", payment.PaymentID, apperrors.ErrNotFound)
	}
	return nil
}

func updatePaymentTotalTx(ctx context.Context, tx pgx.Tx, paymentID string, totalAmount decimal.Decimal, entry domain.HistoryEntry) error {
	query := `UPDATE payments SET total_amount = $2, last_updated_at = $3, last_updated_by = $4 WHERE payment_id = $1;`
	tag, err := tx.Exec(ctx, query, paymentID, totalAmount, entry.ChangedAt, entry.ChangedBy)
	if err != nil {
		return fmt.Errorf("failed to update total for payment %s: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
	}
	return nil
}

func insertHistoryTx(ctx context.Context, tx pgx.Tx, entry domain.HistoryEntry) error {
	query := `
		INSERT INTO payment_history (history_id, payment_id, change_type, previous_status, new_status, previous_amount, new_amount, remarks, change_description, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		entry.HistoryID,
		entry.PaymentID,
		string(entry.ChangeType),
		statusStr(entry.PreviousStatus),
		statusStr(entry.NewStatus),
		nullDec(entry.PreviousAmount),
		nullDec(entry.NewAmount),
		entry.Remarks,
		entry.ChangeDescription,
		entry.ChangedBy,
		entry.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry %s: %w", entry.HistoryID, err)
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	var status string
	var paymentDate, cancelledAt sql.NullTime
	err := row.Scan(
		&payment.PaymentID,
		&status,
		&payment.PaymentMonth,
		&payment.PaymentYear,
		&payment.Description,
		&payment.TotalAmount,
		&paymentDate,
		&payment.ReferenceNumber,
		&payment.CancellationReason,
		&payment.CancelledBy,
		&cancelledAt,
		&payment.CreatedAt,
		&payment.CreatedBy,
		&payment.LastUpdatedAt,
		&payment.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	payment.Status = domain.PaymentStatus(status)
	payment.PaymentDate = timePtr(paymentDate)
	payment.CancelledAt = timePtr(cancelledAt)
	return &payment, nil
}

func scanLineItem(row rowScanner) (*domain.LineItem, error) {
	var item domain.LineItem
	var snapEmployeeName, snapActivityName sql.NullString
	var snapCompletion, snapGross, snapEmployeePf, snapVoluntaryPf, snapEmployerPf, snapPfAmount, snapNetAmount decimal.NullDecimal
	err := row.Scan(
		&item.LineItemID,
		&item.PaymentID,
		&item.AssignmentID,
		&item.EmployeeID,
		&item.WorkActivityID,
		&item.AssignmentDate,
		&item.Rate,
		&item.GrossAmount,
		&item.CompletionPercentage,
		&item.EmployeePf,
		&item.VoluntaryPf,
		&item.EmployerPf,
		&item.PfAmount,
		&item.NetAmount,
		&snapEmployeeName,
		&snapActivityName,
		&snapCompletion,
		&snapGross,
		&snapEmployeePf,
		&snapVoluntaryPf,
		&snapEmployerPf,
		&snapPfAmount,
		&snapNetAmount,
		&item.CreatedAt,
		&item.CreatedBy,
		&item.LastUpdatedAt,
		&item.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	item.SnapshotEmployeeName = strPtr(snapEmployeeName)
	item.SnapshotActivityName = strPtr(snapActivityName)
	item.SnapshotCompletionPercentage = decPtr(snapCompletion)
	item.SnapshotGrossAmount = decPtr(snapGross)
	item.SnapshotEmployeePf = decPtr(snapEmployeePf)
	item.SnapshotVoluntaryPf = decPtr(snapVoluntaryPf)
	item.SnapshotEmployerPf = decPtr(snapEmployerPf)
	item.SnapshotPfAmount = decPtr(snapPfAmount)
	item.SnapshotNetAmount = decPtr(snapNetAmount)
	return &item, nil
}

func lineItemArgs(item domain.LineItem) []any {
	return []any{
		item.LineItemID,
		item.PaymentID,
		item.AssignmentID,
		item.EmployeeID,
		item.WorkActivityID,
		item.AssignmentDate,
		item.Rate,
		item.GrossAmount,
		item.CompletionPercentage,
		item.EmployeePf,
		item.VoluntaryPf,
		item.EmployerPf,
		item.PfAmount,
		item.NetAmount,
		nullStr(item.SnapshotEmployeeName),
		nullStr(item.SnapshotActivityName),
		nullDec(item.SnapshotCompletionPercentage),
		nullDec(item.SnapshotGrossAmount),
		nullDec(item.SnapshotEmployeePf),
		nullDec(item.SnapshotVoluntaryPf),
		nullDec(item.SnapshotEmployerPf),
		nullDec(item.SnapshotPfAmount),
		nullDec(item.SnapshotNetAmount),
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	}
}

// Null conversion helpers between domain pointer fields and SQL null types.

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullDec(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decPtr(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	d := nd.Decimal
	return &d
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func statusStr(st *domain.PaymentStatus) sql.NullString {
	if st == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*st), Valid: true}
}

func statusPtr(ns sql.NullString) *domain.PaymentStatus {
	if !ns.Valid {
		return nil
	}
	st := domain.PaymentStatus(ns.String)
	return &st
}
