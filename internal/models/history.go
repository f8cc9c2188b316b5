package models

import "time"

// HistoryKind is the kind of mutating event a history entry records.
type HistoryKind string

const (
	HistoryCreation HistoryKind = "Creation"
	HistoryEdit     HistoryKind = "Edit"
	HistoryDelivery HistoryKind = "Delivery"
	HistoryExchange HistoryKind = "Exchange"
	HistoryReturn   HistoryKind = "Return"
	HistoryDeletion HistoryKind = "Deletion"
)

var HistoryKinds = []HistoryKind{
	HistoryCreation, HistoryEdit, HistoryDelivery, HistoryExchange, HistoryReturn, HistoryDeletion,
}

func (k HistoryKind) Valid() bool {
	for _, v := range HistoryKinds {
		if k == v {
			return true
		}
	}
	return false
}

// ActorSystem is recorded when no authenticated identity is available.
const ActorSystem = "system"

// HistoryLimit bounds history retrieval per asset.
const HistoryLimit = 50

// Change is one field-level before/after tuple.
type Change struct {
	Field         string `json:"field"`
	PreviousValue string `json:"previousValue"`
	NewValue      string `json:"newValue"`
}

// HistoryEntry is an immutable audit record of one mutating event on an asset.
// AssetID is not a foreign key: entries outlive deleted assets.
type HistoryEntry struct {
	ID          string      `json:"id"`
	AssetID     string      `json:"assetId"`
	Kind        HistoryKind `json:"kind"`
	Description string      `json:"description"`
	Changes     []Change    `json:"changes"`
	Actor       string      `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
}
