package scim

import (
	"strconv"
	"strings"
	"time"

	"github.com/dirbridge/dirbridge/internal/directory"
)

// UserToResource converts a directory user to its SCIM representation.
func UserToResource(u *directory.User) *UserResource {
	if u == nil {
		return nil
	}

	id := strconv.FormatInt(u.ID, 10)

	userName := u.UserName
	if userName == "" && u.Email != nil {
		userName = *u.Email
	}

	name := &NameAttr{}
	if u.Name != nil && *u.Name != "" {
		name.Formatted = u.Name
		name.GivenName, name.FamilyName = splitName(*u.Name)
	}

	emails := []EmailAttr{}
	if u.Email != nil && *u.Email != "" {
		emails = append(emails, EmailAttr{Value: *u.Email, Primary: true})
	}

	return &UserResource{
		Schemas:    []string{SchemaUser},
		ID:         id,
		ExternalID: u.ExternalID,
		UserName:   userName,
		Name:       name,
		Emails:     emails,
		Active:     u.Active,
		Meta: Meta{
			ResourceType: "User",
			Created:      u.CreatedAt.UTC().Format(time.RFC3339),
			LastModified: u.UpdatedAt.UTC().Format(time.RFC3339),
			Location:     BasePath + "/Users/" + id,
		},
	}
}

// splitName derives the given and family name from the formatted name:
// first whitespace token and last whitespace token. A single-token name is
// both.
func splitName(name string) (given, family *string) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return nil, nil
	}
	first := tokens[0]
	last := tokens[len(tokens)-1]
	return &first, &last
}

// PayloadFields maps an inbound SCIM user body to a directory field set.
// The same mapping serves create and full replace. Fields absent from the
// payload are left out of the set entirely, except active, which defaults
// to true when omitted.
func PayloadFields(p *UserPayload) directory.UserFields {
	var fields directory.UserFields

	if p.UserName != "" {
		userName := p.UserName
		fields.UserName = &userName
	}

	if name := formattedName(p.Name); name != "" {
		fields.Name = &name
	}

	if len(p.Emails) > 0 && p.Emails[0].Value != "" {
		email := p.Emails[0].Value
		fields.Email = &email
	}

	active := true
	if p.Active != nil {
		active = *p.Active
	}
	fields.Active = &active

	if p.ExternalID != nil {
		fields.ExternalID = p.ExternalID
	}

	return fields
}

// formattedName resolves the display name from a SCIM name attribute:
// formatted wins; otherwise givenName and familyName are joined with a
// space, tolerating either being absent.
func formattedName(n *NameAttr) string {
	if n == nil {
		return ""
	}
	if n.Formatted != nil && *n.Formatted != "" {
		return *n.Formatted
	}
	parts := []string{}
	if n.GivenName != nil && *n.GivenName != "" {
		parts = append(parts, *n.GivenName)
	}
	if n.FamilyName != nil && *n.FamilyName != "" {
		parts = append(parts, *n.FamilyName)
	}
	return strings.Join(parts, " ")
}
