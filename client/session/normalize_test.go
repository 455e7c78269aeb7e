package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayNameFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		raw  RawProfile
		role Role
		want string
	}{
		{
			name: "fullname wins over everything",
			raw:  RawProfile{Fullname: "Priya Nair", FullName: "ignored", FirstName: "P", LastName: "N", Email: "p@x.com"},
			role: RoleInstructor,
			want: "Priya Nair",
		},
		{
			name: "full_name when fullname absent",
			raw:  RawProfile{FullName: "Ravi Kumar", FirstName: "R", LastName: "K"},
			role: RoleStudent,
			want: "Ravi Kumar",
		},
		{
			name: "bare name from legacy payloads",
			raw:  RawProfile{Name: "Meera"},
			role: RoleStudent,
			want: "Meera",
		},
		{
			name: "first and last concatenated",
			raw:  RawProfile{FirstName: "Ada", LastName: "Lovelace"},
			role: RoleStudent,
			want: "Ada Lovelace",
		},
		{
			name: "first alone is not enough, email local-part used",
			raw:  RawProfile{FirstName: "Ada", Email: "ada.l@example.com"},
			role: RoleStudent,
			want: "ada.l",
		},
		{
			name: "whitespace-only fields are skipped",
			raw:  RawProfile{Fullname: "   ", FullName: "\t", FirstName: "Ada", LastName: "Lovelace"},
			role: RoleStudent,
			want: "Ada Lovelace",
		},
		{
			name: "empty student payload falls back to literal",
			raw:  RawProfile{},
			role: RoleStudent,
			want: "Student",
		},
		{
			name: "empty instructor payload falls back to literal",
			raw:  RawProfile{},
			role: RoleInstructor,
			want: "Instructor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, tt.role)
			assert.Equal(t, tt.want, got.DisplayName)
			assert.NotEmpty(t, got.DisplayName)
			assert.Equal(t, tt.role, got.Role)
		})
	}
}

func TestNormalizeAvatarPrefersStudentField(t *testing.T) {
	got := Normalize(RawProfile{ProfilePicture: "https://cdn/x.png", ProfilePic: "https://cdn/y.png"}, RoleStudent)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, "https://cdn/x.png", *got.AvatarURL)

	got = Normalize(RawProfile{ProfilePic: "https://cdn/y.png"}, RoleInstructor)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, "https://cdn/y.png", *got.AvatarURL)

	got = Normalize(RawProfile{}, RoleStudent)
	assert.Nil(t, got.AvatarURL)
}
