package models

import "time"

// UserRole distinguishes the two account schemas.
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// VerificationStatus values for instructor accounts.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// Student represents a learner account stored in the students table.
type Student struct {
	ID             string    `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	FullName       string    `db:"full_name" json:"full_name"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	ProfilePicture *string   `db:"profile_picture" json:"profile_picture,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Instructor represents a course-seller account stored in the instructors table.
// Field names intentionally differ from Student; the two schemas grew apart in
// the legacy system and clients normalise them.
type Instructor struct {
	ID                 string    `db:"id" json:"id"`
	Email              string    `db:"email" json:"email"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	FullName           string    `db:"full_name" json:"fullname"`
	ProfilePic         *string   `db:"profile_pic" json:"profile_pic,omitempty"`
	VerificationStatus string    `db:"verification_status" json:"verification_status"`
	Active             bool      `db:"active" json:"active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// StudentProfile is the wire shape served by GET /students/profile/.
type StudentProfile struct {
	ID             string  `json:"id"`
	FullName       string  `json:"full_name"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// InstructorProfile is the wire shape served by GET /instructors/profile/.
type InstructorProfile struct {
	ID                 string  `json:"id"`
	FullName           string  `json:"fullname"`
	Email              string  `json:"email"`
	ProfilePic         *string `json:"profile_pic,omitempty"`
	VerificationStatus string  `json:"verification_status"`
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	FullName   *string `json:"fullname,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	PictureURL *string `json:"profile_picture,omitempty"`
}
