package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "tableease/contracts/mq"
	"tableease/internal/model"
	"tableease/internal/repository"
	"tableease/pkg/metrics"
	"tableease/pkg/outbox"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrPartyTooLarge      = errors.New("party size exceeds restaurant capacity")
)

type Service struct {
	db             *pgxpool.Pool
	bookingRepo    *repository.BookingRepository
	restaurantRepo *repository.RestaurantRepository
	outboxRepo     *outbox.Repository
	logger         *zap.Logger
}

func NewService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	restaurantRepo *repository.RestaurantRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:             db,
		bookingRepo:    bookingRepo,
		restaurantRepo: restaurantRepo,
		outboxRepo:     outbox.NewRepository(db),
		logger:         logger,
	}
}

// Create writes the booking and its confirmation event in one
// transaction. The notifier picks the event up off the bus and fans it
// out as a notification.
func (s *Service) Create(ctx context.Context, userID, restaurantID, partySize int, bookedFor time.Time) (*model.Booking, error) {
	rest, err := s.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		metrics.IncrementBookingCreated("failed")
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("restaurant lookup failed: %w", err)
	}
	if partySize < 1 || partySize > rest.Capacity {
		metrics.IncrementBookingCreated("failed")
		return nil, fmt.Errorf("%w: %d", ErrPartyTooLarge, partySize)
	}

	b := &model.Booking{
		UserID:       userID,
		RestaurantID: restaurantID,
		PartySize:    partySize,
		BookedFor:    bookedFor,
		Status:       model.BookingStatusConfirmed,
		Code:         uuid.New().String(),
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.bookingRepo.InsertTx(ctx, tx, b); err != nil {
		metrics.IncrementBookingCreated("failed")
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	payload := mqcontracts.BookingConfirmedPayload{
		BookingID:      b.ID,
		UserID:         b.UserID,
		RestaurantID:   b.RestaurantID,
		RestaurantName: rest.Name,
		PartySize:      b.PartySize,
		BookedFor:      b.BookedFor,
		Code:           b.Code,
		CreatedAt:      b.CreatedAt,
	}
	bookingID64 := int64(b.ID)
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "booking", &bookingID64,
		mqcontracts.RoutingKeyBookingConfirmed, payload); err != nil {
		metrics.IncrementBookingCreated("failed")
		return nil, fmt.Errorf("failed to insert outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		metrics.IncrementBookingCreated("failed")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Booking created",
		zap.Int("booking_id", b.ID),
		zap.Int("user_id", userID),
		zap.Int("restaurant_id", restaurantID),
	)
	metrics.IncrementBookingCreated("success")

	return b, nil
}
