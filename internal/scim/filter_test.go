package scim

import "testing"

func TestEvaluateFilter(t *testing.T) {
	tests := []struct {
		name         string
		filter       string
		wantUserName string
		wantIgnored  bool
	}{
		{
			name:   "empty filter",
			filter: "",
		},
		{
			name:         "userName equality",
			filter:       `userName eq "alice@example.com"`,
			wantUserName: "alice@example.com",
		},
		{
			name:         "value with spaces",
			filter:       `userName eq "alice smith"`,
			wantUserName: "alice smith",
		},
		{
			name:        "unquoted operand",
			filter:      `userName eq alice@example.com`,
			wantIgnored: true,
		},
		{
			name:        "different attribute",
			filter:      `externalId eq "abc-123"`,
			wantIgnored: true,
		},
		{
			name:        "contains operator",
			filter:      `userName co "alice"`,
			wantIgnored: true,
		},
		{
			name:        "compound expression",
			filter:      `userName eq "a@b.com" and active eq true`,
			wantIgnored: true,
		},
		{
			name:        "leading whitespace",
			filter:      ` userName eq "a@b.com"`,
			wantIgnored: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateFilter(tt.filter)
			if got.Ignored != tt.wantIgnored {
				t.Errorf("Ignored = %v, want %v", got.Ignored, tt.wantIgnored)
			}
			if tt.wantUserName == "" {
				if got.UserName != nil {
					t.Errorf("UserName = %q, want nil", *got.UserName)
				}
				return
			}
			if got.UserName == nil {
				t.Fatalf("UserName = nil, want %q", tt.wantUserName)
			}
			if *got.UserName != tt.wantUserName {
				t.Errorf("UserName = %q, want %q", *got.UserName, tt.wantUserName)
			}
		})
	}
}
