package audit

import (
	"context"
	"time"

	common_models "go-pos/internal/common/models"
	"go-pos/pkg/token"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserFinder hydrates actor names when listing entries.
type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
}

type AuditService interface {
	// LogChange appends one entry covering all changed fields of a
	// record mutation. The actor is read from the request context.
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	// LogAuthEvent appends an authentication/authorization event.
	LogAuthEvent(ctx context.Context, action common_models.AuditAction, actorID string, changes map[string]common_models.Change, path, method, ip string) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	// An empty actor means the system itself acted (seeding, migrations).
	actorID := ""
	if claims, ok := ctx.Value(common_models.ClaimsKey).(*token.Claims); ok {
		actorID = claims.UserID
	}

	entry := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now(),
	}

	return s.Repo.Create(ctx, entry)
}

func (s *AuditServiceImpl) LogAuthEvent(ctx context.Context, action common_models.AuditAction, actorID string, changes map[string]common_models.Change, path, method, ip string) error {
	entry := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    "auth",
		ActorID:   actorID,
		Changes:   changes,
		Path:      path,
		Method:    method,
		IP:        ip,
		Timestamp: time.Now(),
	}

	return s.Repo.Create(ctx, entry)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	logs, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	// Collect unique actor IDs
	actorIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, entry := range logs {
		if entry.ActorID != "" && !seen[entry.ActorID] {
			seen[entry.ActorID] = true
			actorIDs = append(actorIDs, entry.ActorID)
		}
	}

	userMap := make(map[string]string)
	if len(actorIDs) > 0 {
		users, err := s.UserRepo.FindByIDs(ctx, actorIDs)
		if err == nil {
			for _, user := range users {
				userMap[user.ID.Hex()] = user.Username
			}
		}
	}

	for i, entry := range logs {
		if entry.ActorID == "" {
			logs[i].ActorName = "System"
		} else if name, ok := userMap[entry.ActorID]; ok {
			logs[i].ActorName = name
		} else {
			logs[i].ActorName = "Unknown User"
		}
	}

	return logs, nil
}
