// Package diff computes field-level changes between two asset states.
package diff

import (
	"github.com/crucial707/inventory/internal/models"
)

// TrackedFields are the asset fields whose changes enter the history log,
// in the order changes are reported.
var TrackedFields = []string{
	"status",
	"location",
	"assignedUserName",
	"area",
	"brand",
	"model",
	"proofOfDelivery",
	"proofOfExchange",
	"proofOfReturn",
}

// FieldValue returns the string form of a tracked field. Unknown fields
// and absent values are "".
func FieldValue(a models.Asset, field string) string {
	switch field {
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
	case "proofOfDelivery":
		return a.ProofOfDelivery
	case "proofOfExchange":
		return a.ProofOfExchange
	case "proofOfReturn":
		return a.ProofOfReturn
	}
	return ""
}

// Compute returns one Change per tracked field whose string value differs
// between before and after. The result is empty, never nil, when nothing changed.
func Compute(before, after models.Asset) []models.Change {
	changes := []models.Change{}
	for _, field := range TrackedFields {
		prev, next := FieldValue(before, field), FieldValue(after, field)
		if prev != next {
			changes = append(changes, models.Change{Field: field, PreviousValue: prev, NewValue: next})
		}
	}
	return changes
}

// Fields lists the field names of changes in order.
func Fields(changes []models.Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.Field
	}
	return out
}
