package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleMember, true},
		{RoleMember, RoleAdmin, false},
		{RoleMember, RoleMember, true},
		// Unknown roles fail-closed.
		{"unknown", RoleMember, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleMember, false},
		{"admin", RoleAdmin, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestIdentityIsAdmin(t *testing.T) {
	tests := []struct {
		id   Identity
		want bool
	}{
		{Identity{UserID: "u1", Role: RoleAdmin}, true},
		{Identity{UserID: "u1", Role: RoleMember}, false},
		{Identity{UserID: "", Role: RoleAdmin}, false},
		{Identity{}, false},
	}

	for _, tt := range tests {
		if got := tt.id.IsAdmin(); got != tt.want {
			t.Errorf("%+v.IsAdmin() = %v, want %v", tt.id, got, tt.want)
		}
	}
}
