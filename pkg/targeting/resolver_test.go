package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/herald/pkg/types"
)

// TestResolve tests the targeting precedence rules
func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		notification *types.Notification
		recipient    types.Recipient
		visible      bool
	}{
		{
			name:         "explicit user id match",
			notification: &types.Notification{TargetUserIDs: []string{"7", "42"}},
			recipient:    types.Recipient{ID: "42", Role: "dealer"},
			visible:      true,
		},
		{
			name:         "explicit user id wins over role mismatch",
			notification: &types.Notification{TargetUserIDs: []string{"42"}, TargetRoles: []string{"admin"}},
			recipient:    types.Recipient{ID: "42", Role: "dealer"},
			visible:      true,
		},
		{
			name:         "role list contains all",
			notification: &types.Notification{TargetRoles: []string{"all"}},
			recipient:    types.Recipient{ID: "1", Role: "manager"},
			visible:      true,
		},
		{
			name:         "role list matches normalized role",
			notification: &types.Notification{TargetRoles: []string{"Super_Admin"}},
			recipient:    types.Recipient{ID: "1", Role: "super admin"},
			visible:      true,
		},
		{
			name:         "role list is authoritative over audience",
			notification: &types.Notification{TargetRoles: []string{"admin"}, TargetAudience: "all"},
			recipient:    types.Recipient{ID: "1", Role: "dealer"},
			visible:      false,
		},
		{
			name:         "audience all matches any role",
			notification: &types.Notification{TargetAudience: "all"},
			recipient:    types.Recipient{ID: "1", Role: "manager"},
			visible:      true,
		},
		{
			name:         "audience matches role case-insensitively",
			notification: &types.Notification{TargetAudience: "Manager"},
			recipient:    types.Recipient{ID: "1", Role: "manager"},
			visible:      true,
		},
		{
			name:         "audience mismatch",
			notification: &types.Notification{TargetAudience: "admin"},
			recipient:    types.Recipient{ID: "1", Role: "dealer"},
			visible:      false,
		},
		{
			name:         "no targeting fields set",
			notification: &types.Notification{},
			recipient:    types.Recipient{ID: "1", Role: "admin"},
			visible:      false,
		},
		{
			name: "empty user id list treated as absent",
			notification: &types.Notification{
				TargetUserIDs:  []string{},
				TargetAudience: "all",
			},
			recipient: types.Recipient{ID: "1", Role: "dealer"},
			visible:   true,
		},
		{
			name:         "role list with whitespace and hyphen variants",
			notification: &types.Notification{TargetRoles: []string{"SUPER-ADMIN", "dealer"}},
			recipient:    types.Recipient{ID: "1", Role: "superadmin"},
			visible:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, Resolve(tt.notification, tt.recipient))
		})
	}
}

// TestNormalizeRole tests role canonicalization
func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"admin", "admin"},
		{"Admin", "admin"},
		{"Super Admin", "superadmin"},
		{"super_admin", "superadmin"},
		{"SUPER-ADMIN", "superadmin"},
		{"  dealer ", "dealer"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeRole(tt.in), "NormalizeRole(%q)", tt.in)
	}
}

// TestSuppressed tests self-authorship suppression
func TestSuppressed(t *testing.T) {
	author := types.Recipient{ID: "author-1", Role: "admin"}
	other := types.Recipient{ID: "user-2", Role: "admin"}

	broadcast := &types.Notification{CreatedBy: "author-1", TargetRoles: []string{"all"}}
	assert.True(t, Suppressed(broadcast, author), "author should not see their own broadcast")
	assert.False(t, Suppressed(broadcast, other), "other recipients are unaffected")

	directToSelf := &types.Notification{CreatedBy: "author-1", TargetUserIDs: []string{"author-1"}}
	assert.False(t, Suppressed(directToSelf, author), "explicit individual target overrides suppression")

	anonymous := &types.Notification{TargetRoles: []string{"all"}}
	assert.False(t, Suppressed(anonymous, author), "records without an author are never suppressed")
}
