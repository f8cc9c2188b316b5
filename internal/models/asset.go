package models

import (
	"strings"
	"time"
)

// EquipmentType is the closed set of equipment kinds.
type EquipmentType string

const (
	EquipmentLaptop   EquipmentType = "Laptop"
	EquipmentMouse    EquipmentType = "Mouse"
	EquipmentKeyboard EquipmentType = "Keyboard"
	EquipmentMonitor  EquipmentType = "Monitor"
	EquipmentPrinter  EquipmentType = "Printer"
	EquipmentRouter   EquipmentType = "Router"
	EquipmentChip     EquipmentType = "Chip"
	EquipmentHeadset  EquipmentType = "Headset"
	EquipmentPhone    EquipmentType = "Phone"
	EquipmentPC       EquipmentType = "PC"
	EquipmentOther    EquipmentType = "Other"
)

// EquipmentTypes lists every valid EquipmentType.
var EquipmentTypes = []EquipmentType{
	EquipmentLaptop, EquipmentMouse, EquipmentKeyboard, EquipmentMonitor, EquipmentPrinter,
	EquipmentRouter, EquipmentChip, EquipmentHeadset, EquipmentPhone, EquipmentPC, EquipmentOther,
}

func (t EquipmentType) Valid() bool {
	for _, v := range EquipmentTypes {
		if t == v {
			return true
		}
	}
	return false
}

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

const (
	StatusAssigned       AssetStatus = "Assigned"
	StatusInOffice       AssetStatus = "InOffice"
	StatusInWarehouse    AssetStatus = "InWarehouse"
	StatusInRepair       AssetStatus = "InRepair"
	StatusDecommissioned AssetStatus = "Decommissioned"
)

var AssetStatuses = []AssetStatus{
	StatusAssigned, StatusInOffice, StatusInWarehouse, StatusInRepair, StatusDecommissioned,
}

func (s AssetStatus) Valid() bool {
	for _, v := range AssetStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Location is where an asset physically is.
type Location string

const (
	LocationHomeRemote Location = "HomeRemote"
	LocationOffice     Location = "Office"
	LocationWarehouse  Location = "Warehouse"
	LocationUnset      Location = "Unset"
)

var Locations = []Location{LocationHomeRemote, LocationOffice, LocationWarehouse, LocationUnset}

func (l Location) Valid() bool {
	for _, v := range Locations {
		if l == v {
			return true
		}
	}
	return false
}

// Asset is one inventoried equipment item, keyed by its business id.
type Asset struct {
	ID               string        `json:"id" validate:"required,max=64"`
	EquipmentType    EquipmentType `json:"equipmentType" validate:"required,enum"`
	Brand            string        `json:"brand" validate:"max=120"`
	Model            string        `json:"model" validate:"max=120"`
	SerialNumber     string        `json:"serialNumber" validate:"max=120"`
	Status           AssetStatus   `json:"status" validate:"required,enum"`
	Location         Location      `json:"location" validate:"required,enum"`
	AssignedUserName string        `json:"assignedUserName" validate:"max=200"`
	CollaboratorRef  *string       `json:"collaboratorRef,omitempty"`
	Area             string        `json:"area" validate:"max=120"`
	DeliveryDate     *Date         `json:"deliveryDate,omitempty"`
	ProofOfDelivery  string        `json:"proofOfDelivery" validate:"omitempty,http_url"`
	ProofOfExchange  string        `json:"proofOfExchange" validate:"omitempty,http_url"`
	ProofOfReturn    string        `json:"proofOfReturn" validate:"omitempty,http_url"`
	Notes            string        `json:"notes" validate:"max=2000"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// NormalizeAssetID trims and uppercases an asset business id.
func NormalizeAssetID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Normalize trims free text, uppercases the id and fills defaults.
func (a *Asset) Normalize() {
	a.ID = NormalizeAssetID(a.ID)
	a.Brand = strings.TrimSpace(a.Brand)
	a.Model = strings.TrimSpace(a.Model)
	a.SerialNumber = strings.TrimSpace(a.SerialNumber)
	a.AssignedUserName = strings.TrimSpace(a.AssignedUserName)
	a.Area = strings.TrimSpace(a.Area)
	a.ProofOfDelivery = strings.TrimSpace(a.ProofOfDelivery)
	a.ProofOfExchange = strings.TrimSpace(a.ProofOfExchange)
	a.ProofOfReturn = strings.TrimSpace(a.ProofOfReturn)
	a.Notes = strings.TrimSpace(a.Notes)
	if a.Status == "" {
		a.Status = StatusInWarehouse
	}
	if a.Location == "" {
		a.Location = LocationUnset
	}
	if a.CollaboratorRef != nil && strings.TrimSpace(*a.CollaboratorRef) == "" {
		a.CollaboratorRef = nil
	}
	if a.DeliveryDate != nil && a.DeliveryDate.IsZero() {
		a.DeliveryDate = nil
	}
}

// AssetPatch is a partial asset update. Nil fields are left unchanged.
// The id and timestamps are not patchable.
type AssetPatch struct {
	EquipmentType    *EquipmentType `json:"equipmentType,omitempty"`
	Brand            *string        `json:"brand,omitempty"`
	Model            *string        `json:"model,omitempty"`
	SerialNumber     *string        `json:"serialNumber,omitempty"`
	Status           *AssetStatus   `json:"status,omitempty"`
	Location         *Location      `json:"location,omitempty"`
	AssignedUserName *string        `json:"assignedUserName,omitempty"`
	// CollaboratorRef set to "" clears the relation.
	CollaboratorRef *string `json:"collaboratorRef,omitempty"`
	Area            *string `json:"area,omitempty"`
	// DeliveryDate set to a zero date clears it.
	DeliveryDate    *Date   `json:"deliveryDate,omitempty"`
	ProofOfDelivery *string `json:"proofOfDelivery,omitempty"`
	ProofOfExchange *string `json:"proofOfExchange,omitempty"`
	ProofOfReturn   *string `json:"proofOfReturn,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch sets no field.
func (p AssetPatch) IsEmpty() bool {
	return p == AssetPatch{}
}

// Apply returns a copy of a with the patch's fields applied and normalized.
func (p AssetPatch) Apply(a Asset) Asset {
	if p.EquipmentType != nil {
		a.EquipmentType = *p.EquipmentType
	}
	if p.Brand != nil {
		a.Brand = *p.Brand
	}
	if p.Model != nil {
		a.Model = *p.Model
	}
	if p.SerialNumber != nil {
		a.SerialNumber = *p.SerialNumber
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.AssignedUserName != nil {
		a.AssignedUserName = *p.AssignedUserName
	}
	if p.CollaboratorRef != nil {
		ref := *p.CollaboratorRef
		a.CollaboratorRef = &ref
	}
	if p.Area != nil {
		a.Area = *p.Area
	}
	if p.DeliveryDate != nil {
		d := *p.DeliveryDate
		a.DeliveryDate = &d
	}
	if p.ProofOfDelivery != nil {
		a.ProofOfDelivery = *p.ProofOfDelivery
	}
	if p.ProofOfExchange != nil {
		a.ProofOfExchange = *p.ProofOfExchange
	}
	if p.ProofOfReturn != nil {
		a.ProofOfReturn = *p.ProofOfReturn
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	a.Normalize()
	return a
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// Normalized returns a copy of the patch with free text trimmed and an
// empty location mapped to Unset, matching Asset.Normalize.
func (p AssetPatch) Normalized() AssetPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.Brand = trim(p.Brand)
	p.Model = trim(p.Model)
	p.SerialNumber = trim(p.SerialNumber)
	p.AssignedUserName = trim(p.AssignedUserName)
	p.CollaboratorRef = trim(p.CollaboratorRef)
	p.Area = trim(p.Area)
	p.ProofOfDelivery = trim(p.ProofOfDelivery)
	p.ProofOfExchange = trim(p.ProofOfExchange)
	p.ProofOfReturn = trim(p.ProofOfReturn)
	p.Notes = trim(p.Notes)
	if p.Location != nil && *p.Location == "" {
		p.Location = Ptr(LocationUnset)
	}
	return p
}
