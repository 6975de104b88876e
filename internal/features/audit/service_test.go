package audit

import (
	"context"
	"testing"

	common_models "go-pos/internal/common/models"
	"go-pos/pkg/token"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memAuditRepo struct {
	entries []common_models.AuditLog
}

func (r *memAuditRepo) Create(ctx context.Context, entry common_models.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memAuditRepo) List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]common_models.AuditLog, error) {
	end := offset + limit
	if offset >= int64(len(r.entries)) {
		return nil, nil
	}
	if end > int64(len(r.entries)) {
		end = int64(len(r.entries))
	}
	out := make([]common_models.AuditLog, end-offset)
	copy(out, r.entries[offset:end])
	return out, nil
}

type fixedUsers struct {
	users []common_models.User
}

func (f *fixedUsers) FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error) {
	return f.users, nil
}

func TestLogChangeReadsActorFromContext(t *testing.T) {
	repo := &memAuditRepo{}
	svc := NewAuditService(repo, &fixedUsers{})

	ctx := context.WithValue(context.Background(), common_models.ClaimsKey, &token.Claims{UserID: "actor-1"})
	changes := map[string]common_models.Change{"name": {From: "a", To: "b"}}

	if err := svc.LogChange(ctx, common_models.AuditActionUpdate, "role", "rec-1", changes); err != nil {
		t.Fatalf("LogChange: %v", err)
	}

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.ActorID != "actor-1" {
		t.Errorf("expected actor-1, got %q", entry.ActorID)
	}
	if entry.Module != "role" || entry.RecordID != "rec-1" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestLogChangeWithoutActorIsSystem(t *testing.T) {
	repo := &memAuditRepo{}
	svc := NewAuditService(repo, &fixedUsers{})

	if err := svc.LogChange(context.Background(), common_models.AuditActionCreate, "role", "rec-1", nil); err != nil {
		t.Fatalf("LogChange: %v", err)
	}
	if got := repo.entries[0].ActorID; got != "" {
		t.Errorf("expected empty actor for system actions, got %q", got)
	}
}

func TestLogAuthEventCarriesRequestContext(t *testing.T) {
	repo := &memAuditRepo{}
	svc := NewAuditService(repo, &fixedUsers{})

	err := svc.LogAuthEvent(context.Background(), common_models.AuditActionAuthFailure, "", map[string]common_models.Change{
		"error_code": {To: "TOKEN_MISSING"},
	}, "/api/v1/roles", "GET", "10.0.0.1")
	if err != nil {
		t.Fatalf("LogAuthEvent: %v", err)
	}

	entry := repo.entries[0]
	if entry.Module != "auth" {
		t.Errorf("expected auth module, got %q", entry.Module)
	}
	if entry.Path != "/api/v1/roles" || entry.Method != "GET" || entry.IP != "10.0.0.1" {
		t.Errorf("request context not recorded: %+v", entry)
	}
}

func TestListLogsHydratesActorNames(t *testing.T) {
	known := common_models.User{ID: primitive.NewObjectID(), Username: "alice"}
	repo := &memAuditRepo{entries: []common_models.AuditLog{
		{ID: primitive.NewObjectID(), ActorID: known.ID.Hex()},
		{ID: primitive.NewObjectID(), ActorID: ""},
		{ID: primitive.NewObjectID(), ActorID: primitive.NewObjectID().Hex()},
	}}
	svc := NewAuditService(repo, &fixedUsers{users: []common_models.User{known}})

	logs, err := svc.ListLogs(context.Background(), nil, 1, 10)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(logs))
	}
	if logs[0].ActorName != "alice" {
		t.Errorf("expected alice, got %q", logs[0].ActorName)
	}
	if logs[1].ActorName != "System" {
		t.Errorf("expected System, got %q", logs[1].ActorName)
	}
	if logs[2].ActorName != "Unknown User" {
		t.Errorf("expected Unknown User, got %q", logs[2].ActorName)
	}
}

func TestListLogsPaginationDefaults(t *testing.T) {
	repo := &memAuditRepo{}
	for i := 0; i < 25; i++ {
		repo.entries = append(repo.entries, common_models.AuditLog{ID: primitive.NewObjectID()})
	}
	svc := NewAuditService(repo, &fixedUsers{})

	logs, err := svc.ListLogs(context.Background(), nil, 0, 0)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 20 {
		t.Errorf("expected default limit of 20, got %d", len(logs))
	}

	logs, err = svc.ListLogs(context.Background(), nil, 2, 20)
	if err != nil {
		t.Fatalf("ListLogs page 2: %v", err)
	}
	if len(logs) != 5 {
		t.Errorf("expected 5 entries on page 2, got %d", len(logs))
	}
}
