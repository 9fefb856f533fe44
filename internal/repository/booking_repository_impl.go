package repository

import (
	"context"
	"errors"
	"strings"

	"slot-booking/internal/domain/entity"
	domainRepo "slot-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

// Create inserts the booking. The partial unique indexes on (booking_date,
// booking_time) are the final arbiter between concurrent reservations.
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		if isDuplicateKeyError(err) {
			return domainRepo.ErrConflict
		}
		return err
	}
	return nil
}

func (r *bookingRepository) FindByDateTime(ctx context.Context, date, time string) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).
		Where("booking_date = ? AND booking_time = ?", date, time).
		Order("CASE WHEN status = 'available' THEN 1 ELSE 0 END").
		Order("created_at").
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindTakenBetween returns the blocking bookings with a date in [fromDate, toDate].
func (r *bookingRepository) FindTakenBetween(ctx context.Context, fromDate, toDate string) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.WithContext(ctx).
		Where("booking_date BETWEEN ? AND ? AND status IN ?", fromDate, toDate, entity.BlockingStatuses).
		Order("booking_date, booking_time").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, filter *entity.BookingFilter) ([]entity.Booking, error) {
	query := r.db.WithContext(ctx).Model(&entity.Booking{})

	if filter != nil {
		if filter.FromDate != "" {
			query = query.Where("booking_date >= ?", filter.FromDate)
		}
		if filter.ToDate != "" {
			query = query.Where("booking_date <= ?", filter.ToDate)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	var bookings []entity.Booking
	if err := query.Order("booking_date, booking_time, created_at").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindBlockingFrom pages through blocking bookings dated fromDate or later.
func (r *bookingRepository) FindBlockingFrom(ctx context.Context, fromDate string, limit, offset int) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.WithContext(ctx).
		Where("booking_date >= ? AND status IN ?", fromDate, entity.BlockingStatuses).
		Order("booking_date, booking_time, id").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateStatus changes the status ONLY if the row is still in the expected one.
// Returns affected rows: 1 = success, 0 = someone else got there first.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// UpdateCustomer never touches placeholders, they have no customer.
func (r *bookingRepository) UpdateCustomer(ctx context.Context, id uuid.UUID, customer entity.Customer) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Where("id = ? AND status IN ?", id, entity.BlockingStatuses).
		Updates(map[string]interface{}{
			"customer_name":  customer.Name,
			"customer_email": customer.Email,
			"customer_phone": customer.Phone,
		})
	return result.RowsAffected, result.Error
}

// isDuplicateKeyError recognises unique violations from either driver, with or
// without gorm's error translation.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
