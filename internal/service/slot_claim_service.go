package service

import (
	"context"
	"fmt"
	"time"

	"slot-booking/internal/domain/entity"
	"slot-booking/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// claimSlotScript sets the claim only if nobody holds it.
// Returns 1 when claimed, 0 when the slot is already claimed.
var claimSlotScript = redis.NewScript(`
	local ok = redis.call('SET', KEYS[1], ARGV[1], 'NX', 'EX', ARGV[2])
	if ok then
		return 1
	end
	return 0
`)

// confirmClaimScript extends the claim to its final TTL, but only for its owner.
var confirmClaimScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('EXPIRE', KEYS[1], ARGV[2])
	end
	return 0
`)

// releaseClaimScript deletes the claim only if it still belongs to the caller,
// so a late release never drops somebody else's claim.
var releaseClaimScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	RedisClaimKeyPrefix = "slot:claim:"

	// A claim that is never confirmed disappears after this long.
	pendingClaimTTL = 30 * time.Second

	// Batch size for startup sync - process 500 records at a time
	syncBatchSize = 500
)

// SlotClaimService keeps a Redis mirror of taken slots so that concurrent
// reservations for the same slot are turned away before they reach the
// database. The database unique index stays the final authority.
type SlotClaimService struct {
	redisClient *redis.Client
	bookingRepo repository.BookingRepository
	log         *logrus.Logger
	loc         *time.Location
	now         func() time.Time
}

func NewSlotClaimService(redisClient *redis.Client, bookingRepo repository.BookingRepository, log *logrus.Logger, loc *time.Location) *SlotClaimService {
	if loc == nil {
		loc = time.Local
	}
	return &SlotClaimService{
		redisClient: redisClient,
		bookingRepo: bookingRepo,
		log:         log,
		loc:         loc,
		now:         time.Now,
	}
}

// Claim marks the slot as being reserved by bookingID for a short while.
// It reports false when another reservation already holds the slot.
func (s *SlotClaimService) Claim(ctx context.Context, slot entity.SlotKey, bookingID string) (bool, error) {
	result, err := claimSlotScript.Run(ctx, s.redisClient,
		[]string{claimKey(slot)}, bookingID, int(pendingClaimTTL.Seconds())).Int()
	if err != nil {
		s.log.Warnf("Failed Lua script Claim for slot %s: %+v", slot, err)
		return false, fmt.Errorf("lua claim for slot %s: %w", slot, err)
	}

	s.log.Debugf("Claim for slot %s by %s: %v", slot, bookingID, result == 1)
	return result == 1, nil
}

// Confirm keeps a claim until the day after the slot, once the booking is committed.
func (s *SlotClaimService) Confirm(ctx context.Context, slot entity.SlotKey, bookingID string) error {
	ttl := s.calculateTTL(slot.Date)
	if err := confirmClaimScript.Run(ctx, s.redisClient,
		[]string{claimKey(slot)}, bookingID, int(ttl.Seconds())).Err(); err != nil {
		s.log.Warnf("Failed to confirm claim for slot %s: %+v", slot, err)
		return fmt.Errorf("lua confirm for slot %s: %w", slot, err)
	}
	return nil
}

// Release drops the claim held by bookingID, if it still holds it.
func (s *SlotClaimService) Release(ctx context.Context, slot entity.SlotKey, bookingID string) error {
	if err := releaseClaimScript.Run(ctx, s.redisClient,
		[]string{claimKey(slot)}, bookingID).Err(); err != nil {
		s.log.Warnf("Failed to release claim for slot %s: %+v", slot, err)
		return fmt.Errorf("lua release for slot %s: %w", slot, err)
	}

	s.log.Debugf("Released claim for slot %s", slot)
	return nil
}

// SyncOnStartup rebuilds the claims of every taken slot from today on.
// A new pipeline is executed per batch so memory stays flat.
//
// Should be called BEFORE accepting traffic.
func (s *SlotClaimService) SyncOnStartup(ctx context.Context) error {
	s.log.Info("Starting Redis slot claim sync from database...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	today := s.now().In(s.loc).Format(entity.DateLayout)
	offset := 0
	totalSynced := 0

	for {
		bookings, err := s.bookingRepo.FindBlockingFrom(ctx, today, syncBatchSize, offset)
		if err != nil {
			s.log.Errorf("Failed to query bookings at offset %d: %+v", offset, err)
			return fmt.Errorf("query bookings at offset %d: %w", offset, err)
		}

		if len(bookings) == 0 {
			if offset == 0 {
				s.log.Info("No taken slots found for sync")
			}
			break
		}

		pipe := s.redisClient.TxPipeline()
		for _, b := range bookings {
			pipe.Set(ctx, claimKey(b.Slot()), b.ID.String(), s.calculateTTL(b.Date))
		}

		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Errorf("Failed to execute pipeline for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}

		totalSynced += len(bookings)
		s.log.Debugf("Synced batch: %d slots", len(bookings))

		if len(bookings) < syncBatchSize {
			break
		}
		offset += syncBatchSize

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	s.log.Infof("Redis slot claim sync completed: %d slots synced in %v", totalSynced, time.Since(startTime))
	return nil
}

// calculateTTL returns the time left until the day after the slot date.
func (s *SlotClaimService) calculateTTL(date string) time.Duration {
	day, err := time.ParseInLocation(entity.DateLayout, date, s.loc)
	if err != nil {
		return pendingClaimTTL
	}

	ttl := day.AddDate(0, 0, 1).Sub(s.now())
	if ttl <= 0 {
		// Past date - short TTL for cleanup
		return 1 * time.Minute
	}
	return ttl
}

func claimKey(slot entity.SlotKey) string {
	return RedisClaimKeyPrefix + slot.Date + ":" + slot.Time
}
