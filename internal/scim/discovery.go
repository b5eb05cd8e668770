package scim

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceProviderConfig is the capability document per RFC 7644 Section 5.
type ServiceProviderConfig struct {
	Schemas               []string               `json:"schemas"`
	DocumentationURI      string                 `json:"documentationUri"`
	Patch                 FeatureSupport         `json:"patch"`
	Bulk                  BulkSupport            `json:"bulk"`
	Filter                FilterSupport          `json:"filter"`
	ChangePassword        FeatureSupport         `json:"changePassword"`
	Sort                  FeatureSupport         `json:"sort"`
	ETag                  FeatureSupport         `json:"etag"`
	AuthenticationSchemes []AuthenticationScheme `json:"authenticationSchemes"`
}

// FeatureSupport flags a single optional SCIM capability.
type FeatureSupport struct {
	Supported bool `json:"supported"`
}

// BulkSupport describes bulk operation limits.
type BulkSupport struct {
	Supported      bool `json:"supported"`
	MaxOperations  int  `json:"maxOperations"`
	MaxPayloadSize int  `json:"maxPayloadSize"`
}

// FilterSupport describes filtering limits.
type FilterSupport struct {
	Supported  bool `json:"supported"`
	MaxResults int  `json:"maxResults"`
}

// AuthenticationScheme describes how clients authenticate.
type AuthenticationScheme struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SpecURI     string `json:"specUri"`
	Type        string `json:"type"`
	Primary     bool   `json:"primary"`
}

// ResourceType describes an available SCIM resource type.
type ResourceType struct {
	Schemas     []string `json:"schemas"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Endpoint    string   `json:"endpoint"`
	Description string   `json:"description"`
	Schema      string   `json:"schema"`
}

// SchemaAttribute describes one attribute of a schema document.
type SchemaAttribute struct {
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	MultiValued   bool              `json:"multiValued"`
	Description   string            `json:"description"`
	Required      bool              `json:"required"`
	CaseExact     bool              `json:"caseExact,omitempty"`
	Mutability    string            `json:"mutability,omitempty"`
	Returned      string            `json:"returned,omitempty"`
	Uniqueness    string            `json:"uniqueness,omitempty"`
	SubAttributes []SchemaAttribute `json:"subAttributes,omitempty"`
}

// SchemaDocument describes a resource schema.
type SchemaDocument struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Attributes  []SchemaAttribute `json:"attributes"`
}

// HandleServiceProviderConfig handles GET /ServiceProviderConfig.
func (s *Service) HandleServiceProviderConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceProviderConfig{
		Schemas:          []string{SchemaServiceProviderConfig},
		DocumentationURI: "https://tools.ietf.org/html/rfc7644",
		Patch:            FeatureSupport{Supported: true},
		Bulk:             BulkSupport{Supported: false, MaxOperations: 0, MaxPayloadSize: 0},
		Filter:           FilterSupport{Supported: true, MaxResults: maxPageSize},
		ChangePassword:   FeatureSupport{Supported: false},
		Sort:             FeatureSupport{Supported: false},
		ETag:             FeatureSupport{Supported: false},
		AuthenticationSchemes: []AuthenticationScheme{
			{
				Name:        "Bearer Token",
				Description: "Authentication scheme using the Bearer Token",
				SpecURI:     "https://tools.ietf.org/html/rfc6750",
				Type:        "bearertoken",
				Primary:     true,
			},
		},
	})
}

// HandleResourceTypes handles GET /ResourceTypes. User is the only
// provisioned resource type.
func (s *Service) HandleResourceTypes(c *gin.Context) {
	c.JSON(http.StatusOK, []ResourceType{
		{
			Schemas:     []string{SchemaResourceType},
			ID:          "User",
			Name:        "User",
			Endpoint:    "/Users",
			Description: "User Account",
			Schema:      SchemaUser,
		},
	})
}

// HandleSchemas handles GET /Schemas.
func (s *Service) HandleSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, []SchemaDocument{
		{
			ID:          SchemaUser,
			Name:        "User",
			Description: "User Account",
			Attributes: []SchemaAttribute{
				{
					Name:        "userName",
					Type:        "string",
					MultiValued: false,
					Description: "Unique identifier for the User",
					Required:    true,
					CaseExact:   false,
					Mutability:  "readWrite",
					Returned:    "default",
					Uniqueness:  "server",
				},
				{
					Name:        "name",
					Type:        "complex",
					MultiValued: false,
					Description: "The components of the user's real name",
					Required:    false,
					SubAttributes: []SchemaAttribute{
						{
							Name:        "formatted",
							Type:        "string",
							MultiValued: false,
							Description: "The full name",
							Required:    false,
							CaseExact:   false,
							Mutability:  "readWrite",
							Returned:    "default",
							Uniqueness:  "none",
						},
					},
				},
			},
		},
	})
}
