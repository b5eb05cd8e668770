package scim

import (
	"strings"

	"github.com/dirbridge/dirbridge/internal/directory"
)

// PatchOp is a single patch operation per RFC 7644 3.5.2.
type PatchOp struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// PatchRequest is the SCIM PATCH body.
type PatchRequest struct {
	Schemas    []string  `json:"schemas"`
	Operations []PatchOp `json:"Operations"`
}

// ApplyPatch folds an ordered operation list into one directory field set,
// which the caller writes in a single store update. Later operations on the
// same path override earlier ones. The dispatch over (op, path) pairs is
// exhaustive: every unrecognized combination lands in an explicit ignore
// branch rather than an error, and "add" is accepted but not interpreted.
func ApplyPatch(ops []PatchOp) directory.UserFields {
	var fields directory.UserFields

	for _, op := range ops {
		switch strings.ToLower(op.Op) {
		case "replace":
			applyReplace(&fields, op)
		case "add":
			// accepted pass-through, no attribute mapping
		case "remove":
			if op.Path == "active" {
				// remove on active always forces deactivation
				active := false
				fields.Active = &active
			}
			// any other remove target: ignored
		default:
			// unknown op: ignored
		}
	}

	return fields
}

func applyReplace(fields *directory.UserFields, op PatchOp) {
	switch op.Path {
	case "active":
		if v, ok := boolValue(op.Value); ok {
			fields.Active = &v
		}
	case "userName":
		if v, ok := op.Value.(string); ok {
			fields.UserName = &v
		}
	case "name.formatted":
		if v, ok := op.Value.(string); ok {
			fields.Name = &v
		}
	case "emails[0].value":
		if v, ok := op.Value.(string); ok {
			fields.Email = &v
		}
	default:
		// unrecognized replace path: ignored
	}
}

// boolValue coerces a patch value into a bool. Some IdPs (notably Azure AD)
// send booleans as "True"/"False" strings.
func boolValue(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(t) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
