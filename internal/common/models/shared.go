package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimsKey is the context/Locals key under which the authenticate
// middleware stores the verified token claims.
const ClaimsKey = "user_claims"

// AuthUserKey is the context/Locals key under which the authenticate
// middleware stores the loaded user record.
const AuthUserKey = "auth_user"

type AuditAction string

const (
	AuditActionCreate      AuditAction = "create"
	AuditActionUpdate      AuditAction = "update"
	AuditActionDelete      AuditAction = "delete"
	AuditActionActivate    AuditAction = "activate"
	AuditActionDeactivate  AuditAction = "deactivate"
	AuditActionLogin       AuditAction = "login"
	AuditActionAuthSuccess AuditAction = "authentication_success"
	AuditActionAuthFailure AuditAction = "authentication_failure"
	AuditActionAuthzDenied AuditAction = "authorization_failed"
)

// Change records one field transition inside an audit entry.
type Change struct {
	From interface{} `bson:"from" json:"from"`
	To   interface{} `bson:"to" json:"to"`
}

// AuditLog is an append-only change record. Entries are created, never
// mutated or deleted. An empty ActorID means the system itself acted.
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`
	RecordID  string             `bson:"record_id" json:"record_id"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	ActorName string             `bson:"-" json:"actor_name,omitempty"`
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Path      string             `bson:"path,omitempty" json:"path,omitempty"`
	Method    string             `bson:"method,omitempty" json:"method,omitempty"`
	IP        string             `bson:"ip,omitempty" json:"ip,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// User is an identity record owned by the persistence store. This core
// only reads it; the IsActive flag gates authentication.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username  string               `bson:"username" json:"username"`
	Password  string               `bson:"password" json:"-"`
	Email     string               `bson:"email" json:"email"`
	Roles     []primitive.ObjectID `bson:"roles" json:"roles"`
	IsActive  bool                 `bson:"is_active" json:"is_active"`
	LastLogin *time.Time           `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

// RoleIDs returns the user's role references as hex strings.
func (u *User) RoleIDs() []string {
	ids := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		ids = append(ids, r.Hex())
	}
	return ids
}

// Log is the record shape the zap mongo sink writes.
type Log struct {
	Message      string    `bson:"message" json:"message"`
	Level        string    `bson:"level" json:"level"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	AppId        string    `bson:"app_id" json:"app_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
