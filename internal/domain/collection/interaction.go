package collection

import (
	"strings"
	"time"

	"github.com/callbridge/backend/internal/domain/shared"
)

// Default labels for interactions recorded without a contact type or
// disposition
const (
	DefaultInteractionSource = "Phone Call"
	DefaultInteractionStatus = "Completed"
)

// Interaction is an immutable audit record of one call with a customer
type Interaction struct {
	shared.BaseEntity
	CustomerID      int64
	CreationDate    time.Time
	LastUpdatedDate time.Time
	Source          string
	Status          string
	Notes           string
}

// NewInteraction creates an unsaved interaction. Blank source and status
// fall back to the default labels; lastUpdated is truncated to its day.
func NewInteraction(customerID int64, creation, lastUpdated time.Time, source, status, notes string) *Interaction {
	if strings.TrimSpace(source) == "" {
		source = DefaultInteractionSource
	}
	if strings.TrimSpace(status) == "" {
		status = DefaultInteractionStatus
	}
	return &Interaction{
		BaseEntity:      shared.NewBaseEntity(lastUpdated),
		CustomerID:      customerID,
		CreationDate:    creation,
		LastUpdatedDate: truncateToDate(lastUpdated),
		Source:          source,
		Status:          status,
		Notes:           notes,
	}
}
