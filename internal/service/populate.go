package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/models"
)

// populator заполняет ссылки на пользователей проекцией {name, email, phone}
type populator struct {
	users UserRepository
}

func (p populator) refs(ctx context.Context, refs ...*models.UserRef) error {
	ids := make([]uuid.UUID, 0, len(refs))
	seen := make(map[uuid.UUID]struct{}, len(refs))
	for _, r := range refs {
		if r == nil || r.ID == uuid.Nil {
			continue
		}
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		ids = append(ids, r.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := p.users.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("could not populate users: %w", err)
	}
	byID := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, r := range refs {
		if r == nil {
			continue
		}
		if u, ok := byID[r.ID]; ok {
			*r = u.Ref()
		}
	}
	return nil
}

func (p populator) incidents(ctx context.Context, items ...*models.Incident) error {
	refs := make([]*models.UserRef, 0, len(items)*2)
	for _, inc := range items {
		refs = append(refs, &inc.ReportedBy, inc.VerifiedBy)
	}
	return p.refs(ctx, refs...)
}

func (p populator) requests(ctx context.Context, items ...*models.HelpRequest) error {
	refs := make([]*models.UserRef, 0, len(items)*3)
	for _, req := range items {
		refs = append(refs, &req.Civilian, req.ClaimedBy, req.VerifiedBy)
		for i := range req.Notes {
			refs = append(refs, &req.Notes[i].AddedBy)
		}
	}
	return p.refs(ctx, refs...)
}
