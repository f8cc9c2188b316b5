package service

import (
	"context"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ========================
// COLLABORATORS
// ========================

func (s *Inventory) CreateCollaborator(ctx context.Context, c models.Collaborator) (_ models.Collaborator, err error) {
	c.Normalize()
	ctx, span := startSpan(ctx, "Inventory.CreateCollaborator", attribute.String("collaborator.employee_id", c.EmployeeID))
	defer func() { endSpan(span, err) }()

	if err := models.Validate(c); err != nil {
		return models.Collaborator{}, err
	}
	created, err := s.collaborators.Create(ctx, c)
	if err != nil {
		return models.Collaborator{}, err
	}
	s.logger.Info("collaborator created", zap.String("collaborator_id", created.ID), zap.String("employee_id", created.EmployeeID))
	return created, nil
}

// GetCollaborator resolves key as an internal id first, then as an employee
// id, and attaches the equipment currently assigned to the collaborator's name.
func (s *Inventory) GetCollaborator(ctx context.Context, key string) (_ models.CollaboratorDetail, err error) {
	ctx, span := startSpan(ctx, "Inventory.GetCollaborator", attribute.String("collaborator.key", key))
	defer func() { endSpan(span, err) }()

	c, err := s.collaborators.Get(ctx, key)
	if apperr.KindOf(err) == apperr.KindNotFound {
		c, err = s.collaborators.GetByEmployeeID(ctx, key)
	}
	if err != nil {
		return models.CollaboratorDetail{}, err
	}
	equipment, err := s.assets.ListByAssignee(ctx, c.FullName)
	if err != nil {
		return models.CollaboratorDetail{}, err
	}
	return models.CollaboratorDetail{Collaborator: c, Equipment: equipment}, nil
}

func (s *Inventory) ListCollaborators(ctx context.Context, p query.CollaboratorParams) (_ CollaboratorList, err error) {
	ctx, span := startSpan(ctx, "Inventory.ListCollaborators")
	defer func() { endSpan(span, err) }()

	items, total, err := s.collaborators.List(ctx, p.Build())
	if err != nil {
		return CollaboratorList{}, err
	}
	return CollaboratorList{Collaborators: items, Total: total}, nil
}

// UpdateCollaborator validates the patched collaborator with the same rules
// as creation before persisting it.
func (s *Inventory) UpdateCollaborator(ctx context.Context, id string, patch models.CollaboratorPatch) (_ models.Collaborator, err error) {
	ctx, span := startSpan(ctx, "Inventory.UpdateCollaborator", attribute.String("collaborator.id", id))
	defer func() { endSpan(span, err) }()

	prior, err := s.collaborators.Get(ctx, id)
	if err != nil {
		return models.Collaborator{}, err
	}
	patch = patch.Normalized()
	if err := models.Validate(patch.Apply(prior)); err != nil {
		return models.Collaborator{}, err
	}
	updated, err := s.collaborators.Update(ctx, id, patch)
	if err != nil {
		return models.Collaborator{}, err
	}
	s.logger.Info("collaborator updated", zap.String("collaborator_id", id))
	return updated, nil
}

func (s *Inventory) DeleteCollaborator(ctx context.Context, id string) (_ models.Collaborator, err error) {
	ctx, span := startSpan(ctx, "Inventory.DeleteCollaborator", attribute.String("collaborator.id", id))
	defer func() { endSpan(span, err) }()

	deleted, err := s.collaborators.Delete(ctx, id)
	if err != nil {
		return models.Collaborator{}, err
	}
	s.logger.Info("collaborator deleted", zap.String("collaborator_id", id))
	return deleted, nil
}
