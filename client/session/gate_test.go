package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowDecisionTable(t *testing.T) {
	student := Identity{Authenticated: true, Role: RoleStudent}
	instructor := Identity{Authenticated: true, Role: RoleInstructor}

	tests := []struct {
		name     string
		identity Identity
		required Role
		want     Decision
	}{
		{"loading always awaits", Identity{Loading: true}, RoleInstructor, AwaitLoading},
		{"loading awaits even when authenticated", Identity{Authenticated: true, Role: RoleInstructor, Loading: true}, RoleInstructor, AwaitLoading},
		{"anonymous redirects", Anonymous(), "", RedirectHome},
		{"anonymous redirects from role-gated view", Anonymous(), RoleStudent, RedirectHome},
		{"student blocked from instructor view", student, RoleInstructor, RedirectHome},
		{"instructor permitted on instructor view", instructor, RoleInstructor, Permit},
		{"student permitted on student view", student, RoleStudent, Permit},
		{"any authenticated role passes unrestricted view", student, "", Permit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.identity, tt.required))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "permit", Permit.String())
	assert.Equal(t, "redirect_home", RedirectHome.String())
	assert.Equal(t, "await_loading", AwaitLoading.String())
}
