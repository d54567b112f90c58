package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetList names one of the four independent lists of an asset clearance.
type AssetList string

const (
	AssetListPhysical        AssetList = "physical_assets"
	AssetListDigital         AssetList = "digital_assets"
	AssetListSecurity        AssetList = "security_items"
	AssetListCompanyProperty AssetList = "company_property"
)

// AssetLists lists the clearance lists in display order.
var AssetLists = []AssetList{AssetListPhysical, AssetListDigital, AssetListSecurity, AssetListCompanyProperty}

// Valid reports whether l is a known list.
func (l AssetList) Valid() bool {
	return slices.Contains(AssetLists, l)
}

// Department returns the department that owns items of list l.
func (l AssetList) Department() Department {
	switch l {
	case AssetListDigital:
		return DepartmentIT
	case AssetListSecurity:
		return DepartmentSecurity
	default:
		return DepartmentAdmin
	}
}

// ItemStatus is the return or revocation state of one asset item.
type ItemStatus string

const (
	ItemPending       ItemStatus = "pending"
	ItemReturned      ItemStatus = "returned"
	ItemLost          ItemStatus = "lost"
	ItemDamaged       ItemStatus = "damaged"
	ItemWaived        ItemStatus = "waived"
	ItemActive        ItemStatus = "active"
	ItemRevoked       ItemStatus = "revoked"
	ItemTransferred   ItemStatus = "transferred"
	ItemNotApplicable ItemStatus = "not_applicable"
	ItemDeactivated   ItemStatus = "deactivated"
)

type listStatuses struct {
	allowed  []ItemStatus
	terminal []ItemStatus
}

var assetListStatuses = map[AssetList]listStatuses{
	AssetListPhysical: {
		allowed:  []ItemStatus{ItemPending, ItemReturned, ItemLost, ItemDamaged, ItemWaived},
		terminal: []ItemStatus{ItemReturned, ItemLost, ItemDamaged, ItemWaived},
	},
	AssetListDigital: {
		allowed:  []ItemStatus{ItemActive, ItemRevoked, ItemTransferred, ItemNotApplicable},
		terminal: []ItemStatus{ItemRevoked, ItemTransferred, ItemNotApplicable},
	},
	AssetListSecurity: {
		allowed:  []ItemStatus{ItemPending, ItemReturned, ItemDeactivated, ItemLost},
		terminal: []ItemStatus{ItemReturned, ItemDeactivated, ItemLost},
	},
	AssetListCompanyProperty: {
		allowed:  []ItemStatus{ItemPending, ItemReturned, ItemLost, ItemDamaged, ItemWaived},
		terminal: []ItemStatus{ItemReturned, ItemLost, ItemDamaged, ItemWaived},
	},
}

// AllowsStatus reports whether s is a valid status for items of list l.
func (l AssetList) AllowsStatus(s ItemStatus) bool {
	return slices.Contains(assetListStatuses[l].allowed, s)
}

// InitialStatus is the status of a freshly registered item of list l.
func (l AssetList) InitialStatus() ItemStatus {
	return assetListStatuses[l].allowed[0]
}

// IsTerminal reports whether s closes an item of list l.
func (l AssetList) IsTerminal(s ItemStatus) bool {
	return slices.Contains(assetListStatuses[l].terminal, s)
}

// AssetItem is one asset, access grant or property item to recover.
type AssetItem struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Identifier     string          `json:"identifier,omitempty"`
	Status         ItemStatus      `json:"status"`
	Value          decimal.Decimal `json:"value"`
	RecoveryAmount decimal.Decimal `json:"recovery_amount"`
	Remarks        string          `json:"remarks,omitempty"`
	UpdatedBy      *uuid.UUID      `json:"updated_by,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AssetClearance tracks the recovery of everything issued to the employee.
type AssetClearance struct {
	ID                   uuid.UUID                  `json:"id"`
	RequestID            uuid.UUID                  `json:"request_id"`
	Lists                map[AssetList][]*AssetItem `json:"lists"`
	ListCompletion       map[AssetList]float64      `json:"list_completion"`
	CompletionPercentage int                        `json:"completion_percentage"`
	OverallStatus        string                     `json:"overall_status"`
	CreatedAt            time.Time                  `json:"created_at"`
	UpdatedAt            time.Time                  `json:"updated_at"`
}

// NewAssetClearance creates an empty clearance shell for a request.
func NewAssetClearance(id, requestID uuid.UUID, at time.Time) *AssetClearance {
	a := &AssetClearance{
		ID:        id,
		RequestID: requestID,
		Lists:     map[AssetList][]*AssetItem{},
		CreatedAt: at,
		UpdatedAt: at,
	}
	a.Recompute()
	return a
}

// Recompute derives per-list completion, overall completion and status from the items.
func (a *AssetClearance) Recompute() {
	a.ListCompletion = make(map[AssetList]float64, len(AssetLists))
	values := make([]float64, 0, len(AssetLists))
	for _, list := range AssetLists {
		c := ListCompletion(a.Lists[list], func(item *AssetItem) bool {
			return list.IsTerminal(item.Status)
		})
		a.ListCompletion[list] = c
		values = append(values, c)
	}
	a.CompletionPercentage, a.OverallStatus = RollUp(CompletionPending, values...)
}

// Item returns the item with id in list, or nil.
func (a *AssetClearance) Item(list AssetList, id uuid.UUID) *AssetItem {
	for _, item := range a.Lists[list] {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Upsert adds item to list or replaces the item with the same id.
func (a *AssetClearance) Upsert(list AssetList, item *AssetItem) {
	if a.Lists == nil {
		a.Lists = map[AssetList][]*AssetItem{}
	}
	for i, existing := range a.Lists[list] {
		if existing.ID == item.ID {
			a.Lists[list][i] = item
			return
		}
	}
	a.Lists[list] = append(a.Lists[list], item)
}

// RecoveryAmount sums what must be recovered for lost or damaged items.
func (a *AssetClearance) RecoveryAmount() decimal.Decimal {
	total := decimal.Zero
	for _, items := range a.Lists {
		for _, item := range items {
			if item.Status == ItemLost || item.Status == ItemDamaged {
				total = total.Add(item.RecoveryAmount)
			}
		}
	}
	return total
}
