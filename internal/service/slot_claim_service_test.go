package service

import (
	"context"
	"testing"
	"time"

	"slot-booking/internal/domain/entity"
	domainRepo "slot-booking/internal/domain/repository"
	"slot-booking/internal/repository"
	"slot-booking/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Monday 2024-06-03 10:00 UTC
var claimNow = time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)

func newTestClaimService(t *testing.T) (*SlotClaimService, *miniredis.Miniredis, domainRepo.BookingRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := repository.NewBookingRepository(testutil.SetupTestDB(t))
	svc := NewSlotClaimService(client, repo, testutil.Logger(), time.UTC)
	svc.now = func() time.Time { return claimNow }
	return svc, mr, repo
}

func TestSlotClaim_ClaimConfirmRelease(t *testing.T) {
	ctx := context.Background()
	svc, mr, _ := newTestClaimService(t)
	slot := entity.SlotKey{Date: "2024-06-04", Time: "09:00"}
	key := RedisClaimKeyPrefix + "2024-06-04:09:00"

	ok, err := svc.Claim(ctx, slot, "booking-1")
	if err != nil || !ok {
		t.Fatalf("expected first claim to succeed, got %v, %v", ok, err)
	}
	if got := mr.TTL(key); got != pendingClaimTTL {
		t.Errorf("expected pending TTL %v, got %v", pendingClaimTTL, got)
	}

	ok, err = svc.Claim(ctx, slot, "booking-2")
	if err != nil || ok {
		t.Fatalf("expected second claim to be rejected, got %v, %v", ok, err)
	}

	// only the owner may confirm or release
	if err := svc.Confirm(ctx, slot, "booking-2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := mr.TTL(key); got != pendingClaimTTL {
		t.Errorf("expected a foreign confirm to leave the TTL alone, got %v", got)
	}
	if err := svc.Release(ctx, slot, "booking-2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !mr.Exists(key) {
		t.Fatal("expected a foreign release to keep the claim")
	}

	if err := svc.Confirm(ctx, slot, "booking-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// until midnight after 2024-06-04
	if got, want := mr.TTL(key), 38*time.Hour; got != want {
		t.Errorf("expected confirmed TTL %v, got %v", want, got)
	}

	if err := svc.Release(ctx, slot, "booking-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mr.Exists(key) {
		t.Error("expected the owner's release to drop the claim")
	}
}

func TestSlotClaim_PendingClaimExpires(t *testing.T) {
	ctx := context.Background()
	svc, mr, _ := newTestClaimService(t)
	slot := entity.SlotKey{Date: "2024-06-04", Time: "09:30"}

	if ok, err := svc.Claim(ctx, slot, "abandoned"); err != nil || !ok {
		t.Fatalf("expected claim to succeed, got %v, %v", ok, err)
	}

	mr.FastForward(pendingClaimTTL + time.Second)

	if ok, err := svc.Claim(ctx, slot, "next"); err != nil || !ok {
		t.Errorf("expected slot to be claimable after the pending TTL, got %v, %v", ok, err)
	}
}

func TestSlotClaim_RedisDown(t *testing.T) {
	svc, mr, _ := newTestClaimService(t)
	mr.Close()

	if _, err := svc.Claim(context.Background(), entity.SlotKey{Date: "2024-06-04", Time: "10:00"}, "b"); err == nil {
		t.Error("expected an error when Redis is unreachable")
	}
}

func TestSlotClaim_SyncOnStartup(t *testing.T) {
	ctx := context.Background()
	svc, mr, repo := newTestClaimService(t)

	upcoming := &entity.Booking{Date: "2024-06-04", Time: "11:00", Status: entity.BookingStatusBooked, CustomerName: "A"}
	seed := []*entity.Booking{
		upcoming,
		{Date: "2024-06-04", Time: "11:30", Status: entity.BookingStatusAvailable},
		{Date: "2024-05-31", Time: "09:00", Status: entity.BookingStatusCompleted, CustomerName: "B"},
	}
	for _, b := range seed {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}
	}

	if err := svc.SyncOnStartup(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected only the upcoming booking to be mirrored, got %v", keys)
	}
	got, err := mr.Get(RedisClaimKeyPrefix + "2024-06-04:11:00")
	if err != nil {
		t.Fatalf("expected claim to exist, got %v", err)
	}
	if got != upcoming.ID.String() {
		t.Errorf("expected claim owned by %s, got %s", upcoming.ID, got)
	}

	// a mirrored slot cannot be claimed again
	if ok, err := svc.Claim(ctx, upcoming.Slot(), "late"); err != nil || ok {
		t.Errorf("expected claim to be rejected after sync, got %v, %v", ok, err)
	}
}

func TestSlotClaim_CalculateTTL(t *testing.T) {
	svc, _, _ := newTestClaimService(t)

	if got := svc.calculateTTL("2024-06-03"); got != 14*time.Hour {
		t.Errorf("expected 14h for today, got %v", got)
	}
	if got := svc.calculateTTL("2024-06-01"); got != time.Minute {
		t.Errorf("expected 1m for a past date, got %v", got)
	}
	if got := svc.calculateTTL("garbage"); got != pendingClaimTTL {
		t.Errorf("expected pending TTL for an unparsable date, got %v", got)
	}
}
