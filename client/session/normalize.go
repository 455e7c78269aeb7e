package session

import "strings"

// RawProfile is the union of the fields the two profile schemas may return.
// Students use full_name/first_name/last_name/profile_picture, instructors
// use fullname/profile_pic, and some legacy payloads carry a bare name.
type RawProfile struct {
	ID             string `json:"id"`
	Fullname       string `json:"fullname"`
	FullName       string `json:"full_name"`
	Name           string `json:"name"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture"`
	ProfilePic     string `json:"profile_pic"`
}

// Normalize collapses a raw payload into the canonical Profile. The display
// name is resolved through an ordered fallback chain and is never empty:
//
//	fullname -> full_name -> name -> "first last" -> email local-part -> role literal
func Normalize(raw RawProfile, role Role) Profile {
	return Profile{
		ID:          strings.TrimSpace(raw.ID),
		DisplayName: displayName(raw, role),
		Email:       strings.TrimSpace(raw.Email),
		AvatarURL:   avatarURL(raw),
		Role:        role,
	}
}

func displayName(raw RawProfile, role Role) string {
	for _, candidate := range []string{raw.Fullname, raw.FullName, raw.Name} {
		if name := strings.TrimSpace(candidate); name != "" {
			return name
		}
	}

	first := strings.TrimSpace(raw.FirstName)
	last := strings.TrimSpace(raw.LastName)
	if first != "" && last != "" {
		return first + " " + last
	}

	if email := strings.TrimSpace(raw.Email); email != "" {
		if at := strings.Index(email, "@"); at > 0 {
			return email[:at]
		}
	}

	return role.FallbackName()
}

func avatarURL(raw RawProfile) *string {
	for _, candidate := range []string{raw.ProfilePicture, raw.ProfilePic} {
		if url := strings.TrimSpace(candidate); url != "" {
			return &url
		}
	}
	return nil
}
