package profileapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyansort/gyansort-api/client/session"
	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
)

func TestFetchProfileDecodesStudentSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/students/profile/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"s-1","full_name":"Asha Verma","first_name":"Asha","last_name":"Verma","email":"asha@example.com","profile_picture":"https://cdn/a.png"}}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	raw, err := client.FetchProfile(context.Background(), session.RoleStudent, "tok")
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", raw.FullName)
	assert.Empty(t, raw.Fullname)
	assert.Equal(t, "https://cdn/a.png", raw.ProfilePicture)
}

func TestFetchProfileDecodesInstructorSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instructors/profile/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"i-1","fullname":"Priya Nair","email":"priya@example.com","profile_pic":"https://cdn/p.png"}}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	raw, err := client.FetchProfile(context.Background(), session.RoleInstructor, "tok")
	require.NoError(t, err)
	assert.Equal(t, "Priya Nair", raw.Fullname)
	assert.Equal(t, "https://cdn/p.png", raw.ProfilePic)
}

func TestFetchProfileMapsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"token expired"}}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	_, err := client.FetchProfile(context.Background(), session.RoleStudent, "stale")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestFetchProfileMapsServerErrorToUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	_, err := client.FetchProfile(context.Background(), session.RoleStudent, "tok")
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))
}

func TestFetchProfileMapsNetworkErrorToUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	_, err := client.FetchProfile(context.Background(), session.RoleStudent, "tok")
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))
}

func TestFetchProfileRejectsUnknownRole(t *testing.T) {
	client := New(Config{BaseURL: "http://localhost:0"}, nil)
	_, err := client.FetchProfile(context.Background(), session.Role("admin"), "tok")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
