// Package mongostore implements the entity and history stores on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/db"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
	"github.com/crucial707/inventory/internal/repo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewStores returns MongoDB-backed stores on database.
func NewStores(database *mongo.Database) repo.Stores {
	return repo.Stores{
		Driver:        "mongo",
		Assets:        NewAssets(database),
		Collaborators: NewCollaborators(database),
		History:       NewHistory(database),
		Pinger:        pinger{database.Client()},
	}
}

type pinger struct{ client *mongo.Client }

func (p pinger) Ping(ctx context.Context) error { return p.client.Ping(ctx, readpref.Primary()) }

// now is truncated to what BSON dates can hold.
func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// filterDoc translates a query.Filter. Search terms are passed as regex
// values built from the escaped pattern, never as operators.
func filterDoc(f query.Filter, fields map[string]string) (bson.M, error) {
	doc := bson.M{}
	for _, eq := range f.Equals {
		key, ok := fields[eq.Field]
		if !ok {
			return nil, apperr.Internal("build filter", fmt.Errorf("unknown filter field %q", eq.Field))
		}
		doc[key] = eq.Value
	}
	if f.Search != nil {
		or := make([]bson.M, 0, len(f.Search.Fields))
		for _, field := range f.Search.Fields {
			key, ok := fields[field]
			if !ok {
				return nil, apperr.Internal("build filter", fmt.Errorf("unknown search field %q", field))
			}
			or = append(or, bson.M{key: primitive.Regex{Pattern: f.Search.Pattern, Options: "i"}})
		}
		doc["$or"] = or
	}
	return doc, nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(what + " not found")
	}
	return apperr.Internal(what+" query", err)
}

// ========================
// ASSETS
// ========================

type assetDoc struct {
	ID               string     `bson:"_id"`
	EquipmentType    string     `bson:"equipmentType"`
	Brand            string     `bson:"brand"`
	Model            string     `bson:"model"`
	SerialNumber     string     `bson:"serialNumber"`
	Status           string     `bson:"status"`
	Location         string     `bson:"location"`
	AssignedUserName string     `bson:"assignedUserName"`
	CollaboratorRef  *string    `bson:"collaboratorRef,omitempty"`
	Area             string     `bson:"area"`
	DeliveryDate     *time.Time `bson:"deliveryDate,omitempty"`
	ProofOfDelivery  string     `bson:"proofOfDelivery"`
	ProofOfExchange  string     `bson:"proofOfExchange"`
	ProofOfReturn    string     `bson:"proofOfReturn"`
	Notes            string     `bson:"notes"`
	CreatedAt        time.Time  `bson:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt"`
}

func toAssetDoc(a models.Asset) assetDoc {
	return assetDoc{
		ID: a.ID, EquipmentType: string(a.EquipmentType), Brand: a.Brand, Model: a.Model,
		SerialNumber: a.SerialNumber, Status: string(a.Status), Location: string(a.Location),
		AssignedUserName: a.AssignedUserName, CollaboratorRef: a.CollaboratorRef, Area: a.Area,
		DeliveryDate: a.DeliveryDate.TimePtr(), ProofOfDelivery: a.ProofOfDelivery,
		ProofOfExchange: a.ProofOfExchange, ProofOfReturn: a.ProofOfReturn, Notes: a.Notes,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

func (d assetDoc) asset() models.Asset {
	return models.Asset{
		ID: d.ID, EquipmentType: models.EquipmentType(d.EquipmentType), Brand: d.Brand, Model: d.Model,
		SerialNumber: d.SerialNumber, Status: models.AssetStatus(d.Status), Location: models.Location(d.Location),
		AssignedUserName: d.AssignedUserName, CollaboratorRef: d.CollaboratorRef, Area: d.Area,
		DeliveryDate: models.DateFromTime(d.DeliveryDate), ProofOfDelivery: d.ProofOfDelivery,
		ProofOfExchange: d.ProofOfExchange, ProofOfReturn: d.ProofOfReturn, Notes: d.Notes,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

var assetFields = map[string]string{
	"id":               "_id",
	"status":           "status",
	"location":         "location",
	"area":             "area",
	"equipmentType":    "equipmentType",
	"brand":            "brand",
	"model":            "model",
	"assignedUserName": "assignedUserName",
	"serialNumber":     "serialNumber",
}

// assetUpdate builds the $set/$unset document for a patch.
func assetUpdate(p models.AssetPatch, at time.Time) bson.M {
	set := bson.M{"updatedAt": at}
	unset := bson.M{}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	if p.EquipmentType != nil {
		set["equipmentType"] = string(*p.EquipmentType)
	}
	str("brand", p.Brand)
	str("model", p.Model)
	str("serialNumber", p.SerialNumber)
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.Location != nil {
		set["location"] = string(*p.Location)
	}
	str("assignedUserName", p.AssignedUserName)
	if p.CollaboratorRef != nil {
		if *p.CollaboratorRef == "" {
			unset["collaboratorRef"] = ""
		} else {
			set["collaboratorRef"] = *p.CollaboratorRef
		}
	}
	str("area", p.Area)
	if p.DeliveryDate != nil {
		if t := p.DeliveryDate.TimePtr(); t != nil {
			set["deliveryDate"] = *t
		} else {
			unset["deliveryDate"] = ""
		}
	}
	str("proofOfDelivery", p.ProofOfDelivery)
	str("proofOfExchange", p.ProofOfExchange)
	str("proofOfReturn", p.ProofOfReturn)
	str("notes", p.Notes)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

type Assets struct {
	coll *mongo.Collection
}

func NewAssets(database *mongo.Database) *Assets {
	return &Assets{coll: database.Collection(db.MongoAssets)}
}

func (s *Assets) Create(ctx context.Context, a models.Asset) (models.Asset, error) {
	a.Normalize()
	at := now()
	a.CreatedAt, a.UpdatedAt = at, at
	if _, err := s.coll.InsertOne(ctx, toAssetDoc(a)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Asset{}, apperr.DuplicateKey("asset "+a.ID+" already exists", err)
		}
		return models.Asset{}, apperr.Internal("insert asset", err)
	}
	return a, nil
}

func (s *Assets) Get(ctx context.Context, id string) (models.Asset, error) {
	var d assetDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": models.NormalizeAssetID(id)}).Decode(&d)
	if err != nil {
		return models.Asset{}, notFoundOr(err, "asset")
	}
	return d.asset(), nil
}

func (s *Assets) Update(ctx context.Context, id string, p models.AssetPatch) (models.Asset, error) {
	var d assetDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": models.NormalizeAssetID(id)},
		assetUpdate(p.Normalized(), now()),
		opts,
	).Decode(&d)
	if err != nil {
		return models.Asset{}, notFoundOr(err, "asset")
	}
	return d.asset(), nil
}

func (s *Assets) Delete(ctx context.Context, id string) (models.Asset, error) {
	var d assetDoc
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": models.NormalizeAssetID(id)}).Decode(&d)
	if err != nil {
		return models.Asset{}, notFoundOr(err, "asset")
	}
	return d.asset(), nil
}

func (s *Assets) List(ctx context.Context, f query.Filter) ([]models.Asset, int, error) {
	filter, err := filterDoc(f, assetFields)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.find(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return out, len(out), nil
}

func (s *Assets) ListByAssignee(ctx context.Context, name string) ([]models.Asset, error) {
	return s.find(ctx, bson.M{"assignedUserName": name})
}

func (s *Assets) find(ctx context.Context, filter bson.M) ([]models.Asset, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apperr.Internal("list assets", err)
	}
	var docs []assetDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.Internal("decode assets", err)
	}
	out := make([]models.Asset, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.asset())
	}
	return out, nil
}

// summarizePipeline groups by all four dimensions in one aggregation.
var summarizePipeline = []bson.M{
	{"$group": bson.M{
		"_id": bson.M{
			"status":        "$status",
			"equipmentType": "$equipmentType",
			"area":          "$area",
			"location":      "$location",
		},
		"count": bson.M{"$sum": 1},
	}},
}

func (s *Assets) Summarize(ctx context.Context) (models.AssetStats, error) {
	cursor, err := s.coll.Aggregate(ctx, summarizePipeline)
	if err != nil {
		return models.AssetStats{}, apperr.Internal("summarize assets", err)
	}
	var groups []struct {
		Key struct {
			Status        string `bson:"status"`
			EquipmentType string `bson:"equipmentType"`
			Area          string `bson:"area"`
			Location      string `bson:"location"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return models.AssetStats{}, apperr.Internal("decode asset groups", err)
	}
	stats := models.NewAssetStats()
	for _, g := range groups {
		stats.Add(g.Key.Status, g.Key.EquipmentType, g.Key.Area, g.Key.Location, g.Count)
	}
	return stats, nil
}

// ========================
// COLLABORATORS
// ========================

type collaboratorDoc struct {
	ID         string    `bson:"_id"`
	EmployeeID string    `bson:"employeeId"`
	FullName   string    `bson:"fullName"`
	Email      string    `bson:"email"`
	Phone      string    `bson:"phone"`
	Area       string    `bson:"area"`
	WorkMode   string    `bson:"workMode"`
	Status     string    `bson:"status"`
	Notes      string    `bson:"notes"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func toCollaboratorDoc(c models.Collaborator) collaboratorDoc {
	return collaboratorDoc{
		ID: c.ID, EmployeeID: c.EmployeeID, FullName: c.FullName, Email: c.Email, Phone: c.Phone,
		Area: string(c.Area), WorkMode: string(c.WorkMode), Status: string(c.Status), Notes: c.Notes,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func (d collaboratorDoc) collaborator() models.Collaborator {
	return models.Collaborator{
		ID: d.ID, EmployeeID: d.EmployeeID, FullName: d.FullName, Email: d.Email, Phone: d.Phone,
		Area: models.OrgArea(d.Area), WorkMode: models.WorkMode(d.WorkMode),
		Status: models.CollaboratorStatus(d.Status), Notes: d.Notes,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

var collaboratorFields = map[string]string{
	"area":       "area",
	"status":     "status",
	"workMode":   "workMode",
	"fullName":   "fullName",
	"email":      "email",
	"employeeId": "employeeId",
}

func collaboratorUpdate(p models.CollaboratorPatch, at time.Time) bson.M {
	set := bson.M{"updatedAt": at}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	str("employeeId", p.EmployeeID)
	str("fullName", p.FullName)
	str("email", p.Email)
	str("phone", p.Phone)
	if p.Area != nil {
		set["area"] = string(*p.Area)
	}
	if p.WorkMode != nil {
		set["workMode"] = string(*p.WorkMode)
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	str("notes", p.Notes)
	return bson.M{"$set": set}
}

type Collaborators struct {
	coll *mongo.Collection
}

func NewCollaborators(database *mongo.Database) *Collaborators {
	return &Collaborators{coll: database.Collection(db.MongoCollaborators)}
}

func duplicateEmployee(employeeID string, err error) error {
	return apperr.DuplicateKey("collaborator with employeeId "+employeeID+" already exists", err)
}

func (s *Collaborators) Create(ctx context.Context, c models.Collaborator) (models.Collaborator, error) {
	c.Normalize()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	at := now()
	c.CreatedAt, c.UpdatedAt = at, at
	if _, err := s.coll.InsertOne(ctx, toCollaboratorDoc(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Collaborator{}, duplicateEmployee(c.EmployeeID, err)
		}
		return models.Collaborator{}, apperr.Internal("insert collaborator", err)
	}
	return c, nil
}

func (s *Collaborators) Get(ctx context.Context, id string) (models.Collaborator, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Collaborators) GetByEmployeeID(ctx context.Context, employeeID string) (models.Collaborator, error) {
	return s.findOne(ctx, bson.M{"employeeId": strings.TrimSpace(employeeID)})
}

func (s *Collaborators) findOne(ctx context.Context, filter bson.M) (models.Collaborator, error) {
	var d collaboratorDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return models.Collaborator{}, notFoundOr(err, "collaborator")
	}
	return d.collaborator(), nil
}

func (s *Collaborators) Update(ctx context.Context, id string, p models.CollaboratorPatch) (models.Collaborator, error) {
	p = p.Normalized()
	var d collaboratorDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, collaboratorUpdate(p, now()), opts).Decode(&d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			employeeID := ""
			if p.EmployeeID != nil {
				employeeID = *p.EmployeeID
			}
			return models.Collaborator{}, duplicateEmployee(employeeID, err)
		}
		return models.Collaborator{}, notFoundOr(err, "collaborator")
	}
	return d.collaborator(), nil
}

func (s *Collaborators) Delete(ctx context.Context, id string) (models.Collaborator, error) {
	var d collaboratorDoc
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.Collaborator{}, notFoundOr(err, "collaborator")
	}
	return d.collaborator(), nil
}

func (s *Collaborators) List(ctx context.Context, f query.Filter) ([]models.Collaborator, int, error) {
	filter, err := filterDoc(f, collaboratorFields)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Internal("list collaborators", err)
	}
	var docs []collaboratorDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, apperr.Internal("decode collaborators", err)
	}
	out := make([]models.Collaborator, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.collaborator())
	}
	return out, len(out), nil
}

// ========================
// HISTORY
// ========================

type changeDoc struct {
	Field         string `bson:"field"`
	PreviousValue string `bson:"previousValue"`
	NewValue      string `bson:"newValue"`
}

type historyDoc struct {
	ID          string      `bson:"_id"`
	AssetID     string      `bson:"assetId"`
	Kind        string      `bson:"kind"`
	Description string      `bson:"description"`
	Changes     []changeDoc `bson:"changes"`
	Actor       string      `bson:"actor"`
	Timestamp   time.Time   `bson:"timestamp"`
}

func (d historyDoc) entry() models.HistoryEntry {
	changes := make([]models.Change, 0, len(d.Changes))
	for _, c := range d.Changes {
		changes = append(changes, models.Change{Field: c.Field, PreviousValue: c.PreviousValue, NewValue: c.NewValue})
	}
	return models.HistoryEntry{
		ID: d.ID, AssetID: d.AssetID, Kind: models.HistoryKind(d.Kind), Description: d.Description,
		Changes: changes, Actor: d.Actor, Timestamp: d.Timestamp,
	}
}

// History only ever inserts into its collection.
type History struct {
	coll *mongo.Collection
}

func NewHistory(database *mongo.Database) *History {
	return &History{coll: database.Collection(db.MongoHistory)}
}

func (s *History) Append(ctx context.Context, e models.HistoryEntry) (models.HistoryEntry, error) {
	if e.ID == "" {
		e.ID = repo.NewHistoryID()
	}
	if e.Changes == nil {
		e.Changes = []models.Change{}
	}
	e.Timestamp = now()
	d := historyDoc{
		ID: e.ID, AssetID: e.AssetID, Kind: string(e.Kind), Description: e.Description,
		Changes: make([]changeDoc, 0, len(e.Changes)), Actor: e.Actor, Timestamp: e.Timestamp,
	}
	for _, c := range e.Changes {
		d.Changes = append(d.Changes, changeDoc(c))
	}
	if _, err := s.coll.InsertOne(ctx, d); err != nil {
		return models.HistoryEntry{}, apperr.Internal("insert history", err)
	}
	return e, nil
}

// historySort is newest first. Timestamps are stored with millisecond
// precision, so the time-ordered id breaks ties.
var historySort = bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}

func (s *History) ListByAsset(ctx context.Context, assetID string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > models.HistoryLimit {
		limit = models.HistoryLimit
	}
	opts := options.Find().
		SetSort(historySort).
		SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, bson.M{"assetId": models.NormalizeAssetID(assetID)}, opts)
	if err != nil {
		return nil, apperr.Internal("list history", err)
	}
	var docs []historyDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.Internal("decode history", err)
	}
	out := make([]models.HistoryEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entry())
	}
	return out, nil
}
