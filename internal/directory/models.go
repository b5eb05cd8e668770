// Package directory provides the local user directory backing SCIM
// provisioning and IdP login reconciliation.
package directory

import "time"

// User is a directory account. It is created by SCIM provisioning and bound
// to the IdP's stable subject identifier on first successful login.
type User struct {
	ID         int64      `json:"id"`
	UserName   string     `json:"user_name"`
	Email      *string    `json:"email,omitempty"`
	Name       *string    `json:"name,omitempty"`
	ExternalID *string    `json:"external_id,omitempty"`
	Active     bool       `json:"active"`
	KeycloakID *string    `json:"keycloak_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UserFields is a partial update set. A nil field is left unchanged by
// Update; Create treats nil Active as true.
type UserFields struct {
	UserName   *string
	Email      *string
	Name       *string
	ExternalID *string
	Active     *bool
	KeycloakID *string
}

// Query selects users for List and Count. The only supported predicate is
// equality on userName; results are always ordered by ascending id.
type Query struct {
	UserName *string
	Offset   int
	Limit    int
}
