// Package service holds the inventory operations shared by the HTTP API and
// the CLI. Every mutation of an asset goes through the history recorder.
package service

import (
	"context"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/repo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("inventory/service")

// Inventory is the asset and collaborator service.
type Inventory struct {
	assets        repo.AssetStore
	collaborators repo.CollaboratorStore
	history       repo.HistoryStore
	recorder      *Recorder
	logger        *zap.Logger
}

// New builds the service on one driver's stores.
func New(stores repo.Stores, logger *zap.Logger) *Inventory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inventory{
		assets:        stores.Assets,
		collaborators: stores.Collaborators,
		history:       stores.History,
		recorder:      NewRecorder(stores.History, logger),
		logger:        logger,
	}
}

// Recorder returns the history recorder used by the service.
func (s *Inventory) Recorder() *Recorder { return s.recorder }

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan marks the span failed for errors other than client mistakes.
func endSpan(span trace.Span, err error) {
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindValidation, apperr.KindNotFound, apperr.KindDuplicateKey:
			span.SetAttributes(attribute.String("error.kind", apperr.KindOf(err).String()))
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

// checkCollaboratorRef rejects a reference to a collaborator that does not exist.
// An empty reference clears the relation and is always accepted.
func (s *Inventory) checkCollaboratorRef(ctx context.Context, ref *string) error {
	if ref == nil || *ref == "" {
		return nil
	}
	if _, err := s.collaborators.Get(ctx, *ref); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.Validation("validation failed", map[string]string{"collaboratorRef": "unknown collaborator"})
		}
		return err
	}
	return nil
}

// AssetList is one page of the asset list.
type AssetList struct {
	Assets []models.Asset `json:"assets"`
	Total  int            `json:"total"`
}

// CollaboratorList is the collaborator list.
type CollaboratorList struct {
	Collaborators []models.Collaborator `json:"collaborators"`
	Total         int                   `json:"total"`
}
