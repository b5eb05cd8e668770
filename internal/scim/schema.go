// Package scim implements the SCIM 2.0 resource server (RFC 7643/7644)
// over the local user directory.
package scim

import "strconv"

// BasePath is the URL prefix for all SCIM routes and meta.location values.
const BasePath = "/scim/v2"

// SCIM schema URNs
const (
	SchemaUser                  = "urn:ietf:params:scim:schemas:core:2.0:User"
	SchemaListResponse          = "urn:ietf:params:scim:api:messages:2.0:ListResponse"
	SchemaError                 = "urn:ietf:params:scim:api:messages:2.0:Error"
	SchemaPatchOp               = "urn:ietf:params:scim:api:messages:2.0:PatchOp"
	SchemaServiceProviderConfig = "urn:ietf:params:scim:schemas:core:2.0:ServiceProviderConfig"
	SchemaResourceType          = "urn:ietf:params:scim:schemas:core:2.0:ResourceType"
)

// UserResource is the outbound SCIM representation of a directory user.
type UserResource struct {
	Schemas    []string    `json:"schemas"`
	ID         string      `json:"id"`
	ExternalID *string     `json:"externalId,omitempty"`
	UserName   string      `json:"userName"`
	Name       *NameAttr   `json:"name,omitempty"`
	Emails     []EmailAttr `json:"emails"`
	Active     bool        `json:"active"`
	Meta       Meta        `json:"meta"`
}

// NameAttr is the SCIM complex name attribute. Formatted carries the
// directory's single display name; given/family are derived views of it.
type NameAttr struct {
	Formatted  *string `json:"formatted,omitempty"`
	GivenName  *string `json:"givenName,omitempty"`
	FamilyName *string `json:"familyName,omitempty"`
}

// EmailAttr is a single entry of the multi-valued emails attribute.
type EmailAttr struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary,omitempty"`
}

// Meta is the read-only resource metadata block.
type Meta struct {
	ResourceType string `json:"resourceType"`
	Created      string `json:"created"`
	LastModified string `json:"lastModified"`
	Location     string `json:"location"`
}

// UserPayload is the inbound SCIM user body for create and replace.
type UserPayload struct {
	Schemas    []string    `json:"schemas"`
	ExternalID *string     `json:"externalId"`
	UserName   string      `json:"userName"`
	Name       *NameAttr   `json:"name"`
	Emails     []EmailAttr `json:"emails"`
	Active     *bool       `json:"active"`
}

// ListResponse is the SCIM query response envelope (RFC 7644 3.4.2).
type ListResponse struct {
	Schemas      []string        `json:"schemas"`
	TotalResults int             `json:"totalResults"`
	StartIndex   int             `json:"startIndex"`
	ItemsPerPage int             `json:"itemsPerPage"`
	Resources    []*UserResource `json:"Resources"`
}

// NewListResponse builds the list envelope. startIndex is echoed as the
// client sent it; itemsPerPage is the actual page size returned.
func NewListResponse(resources []*UserResource, totalResults, startIndex int) *ListResponse {
	return &ListResponse{
		Schemas:      []string{SchemaListResponse},
		TotalResults: totalResults,
		StartIndex:   startIndex,
		ItemsPerPage: len(resources),
		Resources:    resources,
	}
}

// Error is the SCIM error response body (RFC 7644 3.12). ScimType is
// serialized as null when absent, matching what provisioning clients expect.
type Error struct {
	Schemas  []string `json:"schemas"`
	Status   string   `json:"status"`
	Detail   string   `json:"detail"`
	ScimType *string  `json:"scimType"`
}

func newError(status int, detail string, scimType *string) *Error {
	return &Error{
		Schemas:  []string{SchemaError},
		Status:   strconv.Itoa(status),
		Detail:   detail,
		ScimType: scimType,
	}
}

// ErrorBadRequest creates a 400 error body.
func ErrorBadRequest(detail string) *Error { return newError(400, detail, nil) }

// ErrorUnauthorized creates a 401 error body.
func ErrorUnauthorized(detail string) *Error { return newError(401, detail, nil) }

// ErrorNotFound creates a 404 error body.
func ErrorNotFound(detail string) *Error { return newError(404, detail, nil) }

// ErrorConflict creates a 409 error body with the uniqueness scimType.
func ErrorConflict(detail string) *Error {
	scimType := "uniqueness"
	return newError(409, detail, &scimType)
}

// ErrorInternal creates a 500 error body.
func ErrorInternal(detail string) *Error { return newError(500, detail, nil) }
