package scim

import "testing"

func TestApplyPatch_Replace(t *testing.T) {
	t.Run("active false", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "replace", Path: "active", Value: false}})
		if fields.Active == nil || *fields.Active != false {
			t.Errorf("Active = %v, want false", fields.Active)
		}
	})

	t.Run("active string true from Azure AD", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "Replace", Path: "active", Value: "True"}})
		if fields.Active == nil || *fields.Active != true {
			t.Errorf("Active = %v, want true", fields.Active)
		}
	})

	t.Run("userName", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "replace", Path: "userName", Value: "new@example.com"}})
		if fields.UserName == nil || *fields.UserName != "new@example.com" {
			t.Errorf("UserName = %v, want new@example.com", fields.UserName)
		}
	})

	t.Run("name formatted", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "replace", Path: "name.formatted", Value: "Alice Smith"}})
		if fields.Name == nil || *fields.Name != "Alice Smith" {
			t.Errorf("Name = %v, want Alice Smith", fields.Name)
		}
	})

	t.Run("first email", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "replace", Path: "emails[0].value", Value: "a@b.com"}})
		if fields.Email == nil || *fields.Email != "a@b.com" {
			t.Errorf("Email = %v, want a@b.com", fields.Email)
		}
	})

	t.Run("unrecognized path ignored", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "replace", Path: "displayName", Value: "x"}})
		if fields.UserName != nil || fields.Email != nil || fields.Name != nil || fields.Active != nil {
			t.Errorf("expected empty field set, got %+v", fields)
		}
	})
}

func TestApplyPatch_RemoveAndAdd(t *testing.T) {
	t.Run("remove active deactivates", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "remove", Path: "active"}})
		if fields.Active == nil || *fields.Active != false {
			t.Errorf("Active = %v, want false", fields.Active)
		}
	})

	t.Run("remove other path ignored", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "remove", Path: "emails[0].value"}})
		if fields.Email != nil || fields.Active != nil {
			t.Errorf("expected empty field set, got %+v", fields)
		}
	})

	t.Run("add is a no-op", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "add", Path: "userName", Value: "x@y.com"}})
		if fields.UserName != nil {
			t.Errorf("UserName = %v, want nil", fields.UserName)
		}
	})

	t.Run("unknown op ignored", func(t *testing.T) {
		fields := ApplyPatch([]PatchOp{{Op: "move", Path: "userName", Value: "x@y.com"}})
		if fields.UserName != nil {
			t.Errorf("UserName = %v, want nil", fields.UserName)
		}
	})
}

func TestApplyPatch_LaterOpWins(t *testing.T) {
	fields := ApplyPatch([]PatchOp{
		{Op: "replace", Path: "active", Value: true},
		{Op: "replace", Path: "userName", Value: "first@example.com"},
		{Op: "replace", Path: "userName", Value: "second@example.com"},
		{Op: "remove", Path: "active"},
	})

	if fields.UserName == nil || *fields.UserName != "second@example.com" {
		t.Errorf("UserName = %v, want second@example.com", fields.UserName)
	}
	if fields.Active == nil || *fields.Active != false {
		t.Errorf("Active = %v, want false", fields.Active)
	}
}
