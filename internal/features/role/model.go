package role

import (
	"time"

	"go-pos/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role groups a named permission set assignable to staff members.
// System roles are seeded from the named templates and are immutable.
type Role struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Permissions permission.Set     `json:"permissions" bson:"permissions"`
	IsSystem    bool               `json:"is_system_role" bson:"is_system_role"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	CreatedBy   string             `json:"created_by,omitempty" bson:"created_by,omitempty"`
	UpdatedBy   string             `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`

	// StaffCount is derived at read time, never stored.
	StaffCount int64 `json:"staff_count" bson:"-"`
}
