package service

import (
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/google/uuid"
)

// Requester is the authenticated caller as established by the auth middleware.
type Requester struct {
	ID   uuid.UUID
	Role string
}

func (r Requester) IsAdmin() bool {
	return r.Role == models.RoleAdmin
}

func (r Requester) CanAccess(owner uuid.UUID) bool {
	return r.IsAdmin() || (r.ID != uuid.Nil && r.ID == owner)
}
