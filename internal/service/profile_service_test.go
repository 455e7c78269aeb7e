package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyansort/gyansort-api/internal/models"
	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
)

type mockProfileRepo struct {
	students    map[string]*models.Student
	instructors map[string]*models.Instructor
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{
		students:    map[string]*models.Student{},
		instructors: map[string]*models.Instructor{},
	}
}

func (m *mockProfileRepo) FindStudentByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockProfileRepo) UpdateStudentProfile(_ context.Context, id, fullName, firstName, lastName string, picture *string, _ time.Time) error {
	s, ok := m.students[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.FullName = fullName
	s.FirstName = firstName
	s.LastName = lastName
	s.ProfilePicture = picture
	return nil
}

func (m *mockProfileRepo) FindInstructorByID(_ context.Context, id string) (*models.Instructor, error) {
	i, ok := m.instructors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return i, nil
}

func (m *mockProfileRepo) UpdateInstructorProfile(_ context.Context, id, fullName string, picture *string, _ time.Time) error {
	i, ok := m.instructors[id]
	if !ok {
		return sql.ErrNoRows
	}
	i.FullName = fullName
	i.ProfilePic = picture
	return nil
}

func TestStudentProfileKeepsLegacyFieldShape(t *testing.T) {
	repo := newMockProfileRepo()
	repo.students["s-1"] = &models.Student{
		ID: "s-1", Email: "asha@example.com",
		FullName: "Asha Verma", FirstName: "Asha", LastName: "Verma",
	}
	svc := NewProfileService(repo, nil)

	profile, err := svc.StudentProfile(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", profile.FullName)
	assert.Equal(t, "Asha", profile.FirstName)
	assert.Nil(t, profile.ProfilePicture)
}

func TestStudentProfileNotFound(t *testing.T) {
	svc := NewProfileService(newMockProfileRepo(), nil)

	_, err := svc.StudentProfile(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestUpdateStudentProfilePartial(t *testing.T) {
	repo := newMockProfileRepo()
	repo.students["s-1"] = &models.Student{
		ID: "s-1", Email: "asha@example.com",
		FullName: "Asha Verma", FirstName: "Asha", LastName: "Verma",
	}
	svc := NewProfileService(repo, nil)

	newLast := "Iyer"
	profile, err := svc.UpdateStudentProfile(context.Background(), "s-1", models.UpdateProfileRequest{LastName: &newLast})
	require.NoError(t, err)

	assert.Equal(t, "Asha Verma", profile.FullName)
	assert.Equal(t, "Iyer", profile.LastName)
	assert.Equal(t, "Iyer", repo.students["s-1"].LastName)
}

func TestUpdateStudentProfileIgnoresBlankFullName(t *testing.T) {
	repo := newMockProfileRepo()
	repo.students["s-1"] = &models.Student{ID: "s-1", FullName: "Asha Verma"}
	svc := NewProfileService(repo, nil)

	blank := "   "
	profile, err := svc.UpdateStudentProfile(context.Background(), "s-1", models.UpdateProfileRequest{FullName: &blank})
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", profile.FullName)
}

func TestUpdateInstructorProfile(t *testing.T) {
	repo := newMockProfileRepo()
	repo.instructors["i-1"] = &models.Instructor{
		ID: "i-1", Email: "priya@example.com",
		FullName: "Priya Nair", VerificationStatus: models.VerificationVerified,
	}
	svc := NewProfileService(repo, nil)

	name := "Priya N. Nair"
	pic := "https://cdn/p.png"
	profile, err := svc.UpdateInstructorProfile(context.Background(), "i-1", models.UpdateProfileRequest{FullName: &name, PictureURL: &pic})
	require.NoError(t, err)

	assert.Equal(t, "Priya N. Nair", profile.FullName)
	require.NotNil(t, profile.ProfilePic)
	assert.Equal(t, "https://cdn/p.png", *profile.ProfilePic)
	assert.Equal(t, models.VerificationVerified, profile.VerificationStatus)
}
