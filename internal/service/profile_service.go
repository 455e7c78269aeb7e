package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gyansort/gyansort-api/internal/models"
	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
)

type profileUserRepository interface {
	FindStudentByID(ctx context.Context, id string) (*models.Student, error)
	UpdateStudentProfile(ctx context.Context, id, fullName, firstName, lastName string, picture *string, updatedAt time.Time) error
	FindInstructorByID(ctx context.Context, id string) (*models.Instructor, error)
	UpdateInstructorProfile(ctx context.Context, id, fullName string, picture *string, updatedAt time.Time) error
}

// ProfileService serves the role-keyed profile endpoints. The two roles keep
// their historical wire shapes; clients are expected to normalise them.
type ProfileService struct {
	repo   profileUserRepository
	logger *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileUserRepository, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, logger: logger}
}

// StudentProfile returns the student-schema profile payload.
func (s *ProfileService) StudentProfile(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	student, err := s.repo.FindStudentByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return &models.StudentProfile{
		ID:             student.ID,
		FullName:       student.FullName,
		FirstName:      student.FirstName,
		LastName:       student.LastName,
		Email:          student.Email,
		ProfilePicture: student.ProfilePicture,
	}, nil
}

// InstructorProfile returns the instructor-schema profile payload.
func (s *ProfileService) InstructorProfile(ctx context.Context, instructorID string) (*models.InstructorProfile, error) {
	instructor, err := s.repo.FindInstructorByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return &models.InstructorProfile{
		ID:                 instructor.ID,
		FullName:           instructor.FullName,
		Email:              instructor.Email,
		ProfilePic:         instructor.ProfilePic,
		VerificationStatus: instructor.VerificationStatus,
	}, nil
}

// UpdateStudentProfile applies a partial profile update and returns the new
// payload.
func (s *ProfileService) UpdateStudentProfile(ctx context.Context, studentID string, req models.UpdateProfileRequest) (*models.StudentProfile, error) {
	student, err := s.repo.FindStudentByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	fullName := student.FullName
	firstName := student.FirstName
	lastName := student.LastName
	picture := student.ProfilePicture

	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		fullName = strings.TrimSpace(*req.FullName)
	}
	if req.FirstName != nil {
		firstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		lastName = strings.TrimSpace(*req.LastName)
	}
	if req.PictureURL != nil {
		picture = req.PictureURL
	}

	if err := s.repo.UpdateStudentProfile(ctx, studentID, fullName, firstName, lastName, picture, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student profile")
	}

	return &models.StudentProfile{
		ID:             student.ID,
		FullName:       fullName,
		FirstName:      firstName,
		LastName:       lastName,
		Email:          student.Email,
		ProfilePicture: picture,
	}, nil
}

// UpdateInstructorProfile applies a partial profile update for an instructor.
func (s *ProfileService) UpdateInstructorProfile(ctx context.Context, instructorID string, req models.UpdateProfileRequest) (*models.InstructorProfile, error) {
	instructor, err := s.repo.FindInstructorByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	fullName := instructor.FullName
	picture := instructor.ProfilePic
	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		fullName = strings.TrimSpace(*req.FullName)
	}
	if req.PictureURL != nil {
		picture = req.PictureURL
	}

	if err := s.repo.UpdateInstructorProfile(ctx, instructorID, fullName, picture, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instructor profile")
	}

	return &models.InstructorProfile{
		ID:                 instructor.ID,
		FullName:           fullName,
		Email:              instructor.Email,
		ProfilePic:         picture,
		VerificationStatus: instructor.VerificationStatus,
	}, nil
}
