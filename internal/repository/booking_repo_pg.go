package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verastro/roombroker/internal/domain"
)

// ErrBookingNotFound is returned when no booking carries the reference code.
var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByReferenceCode(ctx context.Context, referenceCode string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, referenceCode string, status domain.BookingStatus, actor, reason string) (*domain.Booking, error)
	CreateSupplierOrder(ctx context.Context, order *domain.SupplierOrder) error
	ListStatusEvents(ctx context.Context, referenceCode string) ([]domain.StatusEvent, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, reference_code, status, supplier, supplier_reference, update_mode,
	accommodation_id, check_in_date, check_out_date, total_amount, total_currency, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.ReferenceCode, &b.Status, &b.Supplier, &b.SupplierReference, &b.UpdateMode,
		&b.AccommodationID, &b.CheckInDate, &b.CheckOutDate, &b.Total.Amount, &b.Total.Currency, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (reference_code, status, supplier, supplier_reference, update_mode,
		accommodation_id, check_in_date, check_out_date, total_amount, total_currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		booking.ReferenceCode, booking.Status, booking.Supplier, booking.SupplierReference, booking.UpdateMode,
		booking.AccommodationID, booking.CheckInDate, booking.CheckOutDate, booking.Total.Amount, booking.Total.Currency).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO booking_status_events (reference_code, old_status, new_status, actor, reason)
		VALUES ($1, $2, $3, $4, $5)`,
		booking.ReferenceCode, "", booking.Status, "system", "booking registered"); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByReferenceCode(ctx context.Context, referenceCode string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference_code=$1`, referenceCode)
	return scanBooking(row)
}

// UpdateStatus advances the booking status and appends the audit row in one
// transaction, so a status change can never lose its trail.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, referenceCode string, status domain.BookingStatus, actor, reason string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var oldStatus domain.BookingStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE reference_code=$1 FOR UPDATE`, referenceCode).Scan(&oldStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	row := tx.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE reference_code=$2 RETURNING `+bookingColumns, status, referenceCode)
	updated, err := scanBooking(row)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO booking_status_events (reference_code, old_status, new_status, actor, reason)
		VALUES ($1, $2, $3, $4, $5)`, referenceCode, oldStatus, status, actor, reason); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateSupplierOrder writes the financial side-record. The unique constraint
// on reference code plus DO NOTHING keeps it at exactly one row per booking
// no matter how many confirmations arrive.
func (r *PGBookingRepository) CreateSupplierOrder(ctx context.Context, order *domain.SupplierOrder) error {
	_, err := r.db.Exec(ctx, `INSERT INTO supplier_orders (booking_reference_code, supplier, price_amount, price_currency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (booking_reference_code) DO NOTHING`,
		order.BookingReferenceCode, order.Supplier, order.Price.Amount, order.Price.Currency)
	return err
}

func (r *PGBookingRepository) ListStatusEvents(ctx context.Context, referenceCode string) ([]domain.StatusEvent, error) {
	rows, err := r.db.Query(ctx, `SELECT id, reference_code, old_status, new_status, actor, reason, created_at
		FROM booking_status_events WHERE reference_code=$1 ORDER BY id`, referenceCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.StatusEvent
	for rows.Next() {
		var e domain.StatusEvent
		if err := rows.Scan(&e.ID, &e.ReferenceCode, &e.OldStatus, &e.NewStatus, &e.Actor, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
