package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finwage/payroll_backend/internal/core/domain"
	portsrepo "github.com/finwage/payroll_backend/internal/core/ports/repositories"
)

type PgxReportRepository struct {
	BaseRepository
}

// newPgxReportRepository creates a new repository for report queries.
func newPgxReportRepository(pool *pgxpool.Pool) portsrepo.ReportRepository {
	return &PgxReportRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportRepository = (*PgxReportRepository)(nil)

// FindPaidPaymentsByPaymentDate retrieves every PAID payment whose recorded
// payment date falls inside the given calendar month, line items included.
func (r *PgxReportRepository) FindPaidPaymentsByPaymentDate(ctx context.Context, month, year int) ([]domain.Payment, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = $1 AND payment_date >= $2 AND payment_date < $3
		ORDER BY payment_date ASC, payment_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.PaymentPaid), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query paid payments for %d/%d: %w", month, year, err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	paymentIndex := make(map[string]int)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		paymentIndex[payment.PaymentID] = len(payments)
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	if len(payments) == 0 {
		return payments, nil
	}

	ids := make([]string, 0, len(payments))
	for i := range payments {
		ids = append(ids, payments[i].PaymentID)
	}

	itemQuery := `
		SELECT ` + lineItemColumns + `
		FROM line_items
		WHERE payment_id = ANY($1)
		ORDER BY payment_id ASC, created_at ASC, line_item_id ASC;
	`
	itemRows, err := r.Pool.Query(ctx, itemQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items for paid payments: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanLineItem(itemRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item row: %w", err)
		}
		if idx, ok := paymentIndex[item.PaymentID]; ok {
			payments[idx].LineItems = append(payments[idx].LineItems, *item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line item rows: %w", err)
	}

	return payments, nil
}
