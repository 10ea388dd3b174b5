package api

import (
	"context"

	"github.com/soaringjerry/MindBalance/internal/wellness"
)

// Store is the persistence contract shared by the in-memory store and the SQL
// stores. Lookups return nil without an error when nothing matches.
type Store interface {
	AddUser(ctx context.Context, u *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id, name, profession string) (bool, error)

	// SaveAssessment stores a copy of a and sets a.Seq to its insertion order.
	SaveAssessment(ctx context.Context, a *wellness.Assessment) error
	ListAssessmentsByOwner(ctx context.Context, owner string) ([]*wellness.Assessment, error)
	DeleteAssessment(ctx context.Context, owner, id string) (bool, error)
	DeleteAssessmentsByOwner(ctx context.Context, owner string) (int, error)

	AddAudit(e AuditEntry)
	ListAudit() []AuditEntry
}

var _ Store = (*memoryStore)(nil)
