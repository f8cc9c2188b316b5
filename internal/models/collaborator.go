package models

import (
	"strings"
	"time"
)

// OrgArea is the organizational unit a collaborator belongs to.
type OrgArea string

const (
	AreaFinance         OrgArea = "Finance"
	AreaManagement      OrgArea = "Management"
	AreaTalentCulture   OrgArea = "TalentCulture"
	AreaMysteryShopping OrgArea = "MysteryShopping"
	AreaDriverPanel     OrgArea = "DriverPanel"
	AreaMarketResearch  OrgArea = "MarketResearch"
	AreaBidAsk          OrgArea = "BidAsk"
	AreaCommunications  OrgArea = "Communications"
	AreaCommercial      OrgArea = "Commercial"
	AreaOther           OrgArea = "Other"
)

var OrgAreas = []OrgArea{
	AreaFinance, AreaManagement, AreaTalentCulture, AreaMysteryShopping, AreaDriverPanel,
	AreaMarketResearch, AreaBidAsk, AreaCommunications, AreaCommercial, AreaOther,
}

func (a OrgArea) Valid() bool {
	for _, v := range OrgAreas {
		if a == v {
			return true
		}
	}
	return false
}

// WorkMode is how a collaborator works.
type WorkMode string

const (
	WorkRemote WorkMode = "Remote"
	WorkOnSite WorkMode = "OnSite"
	WorkHybrid WorkMode = "Hybrid"
)

var WorkModes = []WorkMode{WorkRemote, WorkOnSite, WorkHybrid}

func (w WorkMode) Valid() bool {
	for _, v := range WorkModes {
		if w == v {
			return true
		}
	}
	return false
}

// CollaboratorStatus is the employment state of a collaborator.
type CollaboratorStatus string

const (
	CollaboratorActive     CollaboratorStatus = "Active"
	CollaboratorInactive   CollaboratorStatus = "Inactive"
	CollaboratorTerminated CollaboratorStatus = "Terminated"
)

var CollaboratorStatuses = []CollaboratorStatus{CollaboratorActive, CollaboratorInactive, CollaboratorTerminated}

func (s CollaboratorStatus) Valid() bool {
	for _, v := range CollaboratorStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Collaborator is an employee who can hold equipment.
type Collaborator struct {
	ID         string             `json:"id"`
	EmployeeID string             `json:"employeeId" validate:"required,max=64"`
	FullName   string             `json:"fullName" validate:"required,max=200"`
	Email      string             `json:"email" validate:"omitempty,email"`
	Phone      string             `json:"phone" validate:"max=40"`
	Area       OrgArea            `json:"area" validate:"omitempty,enum"`
	WorkMode   WorkMode           `json:"workMode" validate:"omitempty,enum"`
	Status     CollaboratorStatus `json:"status" validate:"required,enum"`
	Notes      string             `json:"notes" validate:"max=2000"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// NormalizeFullName trims and uppercases a person's name.
func NormalizeFullName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Normalize trims free text, uppercases the name, lowercases the e-mail
// and defaults the status to Active.
func (c *Collaborator) Normalize() {
	c.EmployeeID = strings.TrimSpace(c.EmployeeID)
	c.FullName = NormalizeFullName(c.FullName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Notes = strings.TrimSpace(c.Notes)
	if c.Status == "" {
		c.Status = CollaboratorActive
	}
}

// CollaboratorPatch is a partial collaborator update. Nil fields are left unchanged.
type CollaboratorPatch struct {
	EmployeeID *string             `json:"employeeId,omitempty"`
	FullName   *string             `json:"fullName,omitempty"`
	Email      *string             `json:"email,omitempty"`
	Phone      *string             `json:"phone,omitempty"`
	Area       *OrgArea            `json:"area,omitempty"`
	WorkMode   *WorkMode           `json:"workMode,omitempty"`
	Status     *CollaboratorStatus `json:"status,omitempty"`
	Notes      *string             `json:"notes,omitempty"`
}

// Normalized applies the same normalization as Collaborator.Normalize to set fields.
func (p CollaboratorPatch) Normalized() CollaboratorPatch {
	if p.EmployeeID != nil {
		p.EmployeeID = Ptr(strings.TrimSpace(*p.EmployeeID))
	}
	if p.FullName != nil {
		p.FullName = Ptr(NormalizeFullName(*p.FullName))
	}
	if p.Email != nil {
		p.Email = Ptr(strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.Phone != nil {
		p.Phone = Ptr(strings.TrimSpace(*p.Phone))
	}
	if p.Notes != nil {
		p.Notes = Ptr(strings.TrimSpace(*p.Notes))
	}
	return p
}

// Apply returns a copy of c with the patch applied.
func (p CollaboratorPatch) Apply(c Collaborator) Collaborator {
	if p.EmployeeID != nil {
		c.EmployeeID = *p.EmployeeID
	}
	if p.FullName != nil {
		c.FullName = *p.FullName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Area != nil {
		c.Area = *p.Area
	}
	if p.WorkMode != nil {
		c.WorkMode = *p.WorkMode
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	c.Normalize()
	return c
}

// CollaboratorDetail is a collaborator plus the equipment currently held,
// matched by assignedUserName == fullName.
type CollaboratorDetail struct {
	Collaborator
	Equipment []Asset `json:"equipment"`
}
