// Package memstore keeps assets, collaborators and history in process
// memory. It backs STORE_DRIVER=memory and the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
	"github.com/crucial707/inventory/internal/repo"
	"github.com/google/uuid"
)

// Clock returns the current time. Tests replace it to get distinct timestamps.
type Clock func() time.Time

// NewStores returns empty in-memory stores sharing one clock.
func NewStores(now Clock) repo.Stores {
	if now == nil {
		now = time.Now
	}
	return repo.Stores{
		Driver:        "memory",
		Assets:        NewAssets(now),
		Collaborators: NewCollaborators(now),
		History:       NewHistory(now),
		Pinger:        alwaysUp{},
	}
}

type alwaysUp struct{}

func (alwaysUp) Ping(context.Context) error { return nil }

// ========================
// ASSETS
// ========================

type Assets struct {
	mu    sync.RWMutex
	items map[string]models.Asset
	now   Clock
}

func NewAssets(now Clock) *Assets {
	if now == nil {
		now = time.Now
	}
	return &Assets{items: map[string]models.Asset{}, now: now}
}

func assetField(a models.Asset, field string) string {
	switch field {
	case "id":
		return a.ID
	case "equipmentType":
		return string(a.EquipmentType)
	case "serialNumber":
		return a.SerialNumber
	case "status":
		return string(a.Status)
	case "location":
		return string(a.Location)
	case "assignedUserName":
		return a.AssignedUserName
	case "area":
		return a.Area
	case "brand":
		return a.Brand
	case "model":
		return a.Model
	}
	return ""
}

func cloneAsset(a models.Asset) models.Asset {
	if a.CollaboratorRef != nil {
		ref := *a.CollaboratorRef
		a.CollaboratorRef = &ref
	}
	if a.DeliveryDate != nil {
		d := *a.DeliveryDate
		a.DeliveryDate = &d
	}
	return a
}

func (s *Assets) Create(_ context.Context, a models.Asset) (models.Asset, error) {
	a.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[a.ID]; ok {
		return models.Asset{}, apperr.DuplicateKey("asset "+a.ID+" already exists", nil)
	}
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.items[a.ID] = cloneAsset(a)
	return a, nil
}

func (s *Assets) Get(_ context.Context, id string) (models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[models.NormalizeAssetID(id)]
	if !ok {
		return models.Asset{}, apperr.NotFound("asset not found")
	}
	return cloneAsset(a), nil
}

func (s *Assets) Update(_ context.Context, id string, p models.AssetPatch) (models.Asset, error) {
	id = models.NormalizeAssetID(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return models.Asset{}, apperr.NotFound("asset not found")
	}
	a = p.Normalized().Apply(a)
	a.UpdatedAt = s.now()
	s.items[id] = cloneAsset(a)
	return a, nil
}

func (s *Assets) Delete(_ context.Context, id string) (models.Asset, error) {
	id = models.NormalizeAssetID(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return models.Asset{}, apperr.NotFound("asset not found")
	}
	delete(s.items, id)
	return a, nil
}

func (s *Assets) List(_ context.Context, f query.Filter) ([]models.Asset, int, error) {
	match := f.Matcher()
	out := s.collect(func(a models.Asset) bool {
		return match(func(field string) string { return assetField(a, field) })
	})
	return out, len(out), nil
}

func (s *Assets) ListByAssignee(_ context.Context, name string) ([]models.Asset, error) {
	return s.collect(func(a models.Asset) bool { return a.AssignedUserName == name }), nil
}

func (s *Assets) collect(keep func(models.Asset) bool) []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Asset{}
	for _, a := range s.items {
		if keep(a) {
			out = append(out, cloneAsset(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Assets) Summarize(_ context.Context) (models.AssetStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := models.NewAssetStats()
	for _, a := range s.items {
		stats.AddAsset(a)
	}
	return stats, nil
}

// ========================
// COLLABORATORS
// ========================

type Collaborators struct {
	mu    sync.RWMutex
	items map[string]models.Collaborator
	now   Clock
}

func NewCollaborators(now Clock) *Collaborators {
	if now == nil {
		now = time.Now
	}
	return &Collaborators{items: map[string]models.Collaborator{}, now: now}
}

func collaboratorField(c models.Collaborator, field string) string {
	switch field {
	case "employeeId":
		return c.EmployeeID
	case "fullName":
		return c.FullName
	case "email":
		return c.Email
	case "area":
		return string(c.Area)
	case "workMode":
		return string(c.WorkMode)
	case "status":
		return string(c.Status)
	}
	return ""
}

// employeeTaken must be called with the lock held.
func (s *Collaborators) employeeTaken(employeeID, exceptID string) bool {
	for id, c := range s.items {
		if id != exceptID && c.EmployeeID == employeeID {
			return true
		}
	}
	return false
}

func (s *Collaborators) Create(_ context.Context, c models.Collaborator) (models.Collaborator, error) {
	c.Normalize()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[c.ID]; ok || s.employeeTaken(c.EmployeeID, "") {
		return models.Collaborator{}, apperr.DuplicateKey("collaborator with employeeId "+c.EmployeeID+" already exists", nil)
	}
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.items[c.ID] = c
	return c, nil
}

func (s *Collaborators) Get(_ context.Context, id string) (models.Collaborator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return models.Collaborator{}, apperr.NotFound("collaborator not found")
	}
	return c, nil
}

func (s *Collaborators) GetByEmployeeID(_ context.Context, employeeID string) (models.Collaborator, error) {
	employeeID = strings.TrimSpace(employeeID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.items {
		if c.EmployeeID == employeeID {
			return c, nil
		}
	}
	return models.Collaborator{}, apperr.NotFound("collaborator not found")
}

func (s *Collaborators) Update(_ context.Context, id string, p models.CollaboratorPatch) (models.Collaborator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return models.Collaborator{}, apperr.NotFound("collaborator not found")
	}
	c = p.Normalized().Apply(c)
	if s.employeeTaken(c.EmployeeID, id) {
		return models.Collaborator{}, apperr.DuplicateKey("collaborator with employeeId "+c.EmployeeID+" already exists", nil)
	}
	c.UpdatedAt = s.now()
	s.items[id] = c
	return c, nil
}

func (s *Collaborators) Delete(_ context.Context, id string) (models.Collaborator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return models.Collaborator{}, apperr.NotFound("collaborator not found")
	}
	delete(s.items, id)
	return c, nil
}

func (s *Collaborators) List(_ context.Context, f query.Filter) ([]models.Collaborator, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := f.Matcher()
	out := []models.Collaborator{}
	for _, c := range s.items {
		if match(func(field string) string { return collaboratorField(c, field) }) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, len(out), nil
}

// ========================
// HISTORY
// ========================

// History is append-only; entries are kept in insertion order.
type History struct {
	mu      sync.RWMutex
	entries []models.HistoryEntry
	now     Clock
}

func NewHistory(now Clock) *History {
	if now == nil {
		now = time.Now
	}
	return &History{now: now}
}

func (s *History) Append(_ context.Context, e models.HistoryEntry) (models.HistoryEntry, error) {
	if e.ID == "" {
		e.ID = repo.NewHistoryID()
	}
	if e.Changes == nil {
		e.Changes = []models.Change{}
	}
	e.Changes = append([]models.Change{}, e.Changes...)
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Timestamp = s.now()
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *History) ListByAsset(_ context.Context, assetID string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > models.HistoryLimit {
		limit = models.HistoryLimit
	}
	assetID = models.NormalizeAssetID(assetID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.HistoryEntry{}
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].AssetID == assetID {
			e := s.entries[i]
			e.Changes = append([]models.Change{}, e.Changes...)
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns the total number of entries across all assets.
func (s *History) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
