package repository

import (
	"context"
	"testing"

	"slot-booking/internal/domain/entity"
	"slot-booking/internal/testutil"
)

func TestAuditLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditLogRepository(testutil.SetupTestDB(t))

	for _, action := range []string{entity.AuditActionAdminLogin, entity.AuditActionBookingCreate} {
		log := &entity.AuditLog{
			Actor:    "admin",
			Action:   action,
			Metadata: entity.JSON{"entity_id": "42"},
		}
		if err := repo.Create(ctx, log); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if log.ID == 0 {
			t.Fatal("expected an id to be assigned")
		}
	}

	logs, total, err := repo.FindAll(ctx, 10, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d of %d", len(logs), total)
	}

	found, err := repo.FindByID(ctx, logs[0].ID)
	if err != nil || found == nil {
		t.Fatalf("expected a log, got %+v, %v", found, err)
	}
	if found.Metadata["entity_id"] != "42" {
		t.Errorf("expected metadata to round trip, got %v", found.Metadata)
	}

	missing, err := repo.FindByID(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for a missing log, got %+v, %v", missing, err)
	}
}
