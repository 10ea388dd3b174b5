package api

import (
	"context"
	"errors"

	"github.com/soaringjerry/MindBalance/internal/services"
	"github.com/soaringjerry/MindBalance/internal/wellness"
)

type assessmentStoreAdapter struct {
	store Store
}

func newAssessmentStoreAdapter(store Store) services.AssessmentStore {
	return &assessmentStoreAdapter{store: store}
}

func (a *assessmentStoreAdapter) SaveAssessment(ctx context.Context, rec *wellness.Assessment) error {
	err := a.store.SaveAssessment(ctx, rec)
	if errors.Is(err, ErrDuplicate) {
		return services.ErrDuplicateRecord
	}
	return err
}

func (a *assessmentStoreAdapter) ListAssessmentsByOwner(ctx context.Context, owner string) ([]*wellness.Assessment, error) {
	return a.store.ListAssessmentsByOwner(ctx, owner)
}

func (a *assessmentStoreAdapter) DeleteAssessment(ctx context.Context, owner, id string) (bool, error) {
	return a.store.DeleteAssessment(ctx, owner, id)
}

func (a *assessmentStoreAdapter) DeleteAssessmentsByOwner(ctx context.Context, owner string) (int, error) {
	return a.store.DeleteAssessmentsByOwner(ctx, owner)
}

func (a *assessmentStoreAdapter) AddAudit(e services.AuditEntry) {
	a.store.AddAudit(AuditEntry{Time: e.Time, Actor: e.Actor, Action: e.Action, Target: e.Target, Note: e.Note})
}

var _ services.AssessmentStore = (*assessmentStoreAdapter)(nil)
