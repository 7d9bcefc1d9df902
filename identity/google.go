package identity

import "github.com/goliatone/go-authkit/core"

// GoogleExtractor lowers an OIDC userinfo payload from Google. The subject
// and email are required; the display name defaults when Google omits it and
// the avatar is optional.
type GoogleExtractor struct{}

func (GoogleExtractor) Provider() core.AuthProvider {
	return core.ProviderGoogle
}

func (GoogleExtractor) Extract(attrs map[string]any) (core.Profile, error) {
	subjectID := readString(attrs, "sub")
	if subjectID == "" {
		return core.Profile{}, core.NewMissingFieldError(core.ProviderGoogle, "sub")
	}
	email := readString(attrs, "email")
	if email == "" {
		return core.Profile{}, core.NewMissingFieldError(core.ProviderGoogle, "email")
	}
	displayName := readString(attrs, "name")
	if displayName == "" {
		displayName = defaultDisplayName
	}

	return core.Profile{
		Provider:    core.ProviderGoogle,
		SubjectID:   subjectID,
		Email:       email,
		DisplayName: displayName,
		AvatarURL:   readString(attrs, "picture"),
	}, nil
}
