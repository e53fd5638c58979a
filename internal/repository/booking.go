package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// PgBookingRepository implements BookingRepository using pgx.
type PgBookingRepository struct{}

// NewPgBookingRepository creates a new PgBookingRepository.
func NewPgBookingRepository() *PgBookingRepository {
	return &PgBookingRepository{}
}

const bookingColumns = `b.id, b.user_id, b.game_id, to_char(b.booking_date, 'YYYY-MM-DD'), b.time_slot,
	b.status, b.cost, b.notes, b.created_at, b.updated_at`

// bookingDest returns scan targets for bookingColumns; call finish after Scan.
func bookingDest(b *domain.Booking) ([]interface{}, func() error) {
	var cost pgtype.Numeric
	dest := []interface{}{
		&b.ID, &b.UserID, &b.GameID, &b.BookingDate, &b.TimeSlot,
		&b.Status, &cost, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	}
	return dest, func() error {
		c, err := costFromNumeric(cost)
		if err != nil {
			return err
		}
		b.Cost = c
		return nil
	}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	dest, finish := bookingDest(b)
	err := row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	if err := finish(); err != nil {
		return nil, fmt.Errorf("scan booking cost: %w", err)
	}
	return b, nil
}

// Insert creates a booking. Double booking is rejected by the bookings_slot_key
// unique index, which covers every status.
func (r *PgBookingRepository) Insert(ctx context.Context, db DBTX, b *domain.Booking) error {
	err := db.QueryRow(ctx,
		`INSERT INTO bookings (id, user_id, game_id, booking_date, time_slot, status, cost, notes)
		 VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		b.ID, b.UserID, b.GameID, b.BookingDate, b.TimeSlot, b.Status, costToNumeric(b.Cost), b.Notes,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	switch {
	case IsUniqueViolation(err, ConstraintBookingSlot):
		return domain.ErrConflict(fmt.Sprintf("slot %s %s is already booked", b.BookingDate, b.TimeSlot))
	case IsForeignKeyViolation(err, ConstraintBookingGame):
		return domain.ErrNotFound("game", b.GameID.String())
	case IsForeignKeyViolation(err, ConstraintBookingUser):
		return domain.ErrNotFound("profile", b.UserID.String())
	case err != nil:
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// FindByID returns a booking, or nil if not found.
func (r *PgBookingRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Booking, error) {
	return scanBooking(db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`, id))
}

// LockForUpdate reads a booking holding a row lock until tx ends.
func (r *PgBookingRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Booking, error) {
	return scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1 FOR UPDATE`, id))
}

// UpdateStatus sets status and, if given, cost. updated_at is maintained by trigger.
func (r *PgBookingRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.BookingStatus, cost *int64) (*domain.Booking, error) {
	return scanBooking(tx.QueryRow(ctx,
		`UPDATE bookings b SET status = $2, cost = COALESCE($3, b.cost)
		 WHERE b.id = $1
		 RETURNING `+bookingColumns,
		id, status, costToNumeric(cost)))
}

// Delete removes a booking row, freeing its slot.
func (r *PgBookingRepository) Delete(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete booking: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser returns a user's bookings, newest first.
func (r *PgBookingRepository) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Booking, error) {
	rows, err := db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings b
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC, b.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for user: %w", err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		dest, finish := bookingDest(&b)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if err := finish(); err != nil {
			return nil, fmt.Errorf("scan booking cost: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListAll returns every booking joined with owner and game display fields.
func (r *PgBookingRepository) ListAll(ctx context.Context, db DBTX) ([]domain.BookingDetail, error) {
	rows, err := db.Query(ctx,
		`SELECT `+bookingColumns+`, p.name, p.email, g.name
		 FROM bookings b
		 JOIN profiles p ON p.id = b.user_id
		 JOIN games g ON g.id = b.game_id
		 ORDER BY b.created_at DESC, b.id`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []domain.BookingDetail
	for rows.Next() {
		var d domain.BookingDetail
		dest, finish := bookingDest(&d.Booking)
		dest = append(dest, &d.UserName, &d.UserEmail, &d.GameName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan booking detail: %w", err)
		}
		if err := finish(); err != nil {
			return nil, fmt.Errorf("scan booking cost: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListBookedSlots returns occupied time slots for a game on a date.
func (r *PgBookingRepository) ListBookedSlots(ctx context.Context, db DBTX, gameID uuid.UUID, date string) ([]string, error) {
	rows, err := db.Query(ctx,
		`SELECT DISTINCT time_slot FROM bookings
		 WHERE game_id = $1 AND booking_date = $2::date AND status IN ('pending', 'confirmed')
		 ORDER BY time_slot`, gameID, date)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}
	defer rows.Close()

	slots := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// InsertStatusChange appends one row to a booking's status history.
func (r *PgBookingRepository) InsertStatusChange(ctx context.Context, db DBTX, c *domain.StatusChange) error {
	err := db.QueryRow(ctx,
		`INSERT INTO booking_status_history (booking_id, from_status, to_status, cost, changed_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		c.BookingID, c.FromStatus, c.ToStatus, costToNumeric(c.Cost), c.ChangedBy,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

// ListStatusChanges returns a booking's history, oldest first.
func (r *PgBookingRepository) ListStatusChanges(ctx context.Context, db DBTX, bookingID uuid.UUID) ([]domain.StatusChange, error) {
	rows, err := db.Query(ctx,
		`SELECT id, booking_id, from_status, to_status, cost, changed_by, created_at
		 FROM booking_status_history
		 WHERE booking_id = $1
		 ORDER BY id ASC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusChange
	for rows.Next() {
		var c domain.StatusChange
		var cost pgtype.Numeric
		if err := rows.Scan(&c.ID, &c.BookingID, &c.FromStatus, &c.ToStatus, &cost, &c.ChangedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		if c.Cost, err = costFromNumeric(cost); err != nil {
			return nil, fmt.Errorf("scan status change cost: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
