package identity

import "github.com/goliatone/go-authkit/core"

// KakaoExtractor lowers a Kakao user payload. The numeric top-level id is the
// subject; email, nickname, and thumbnail live under the nested kakao_account
// object. Kakao may withhold the email, which extracts as an empty string;
// empty emails can collide on the store's unique email index.
type KakaoExtractor struct{}

func (KakaoExtractor) Provider() core.AuthProvider {
	return core.ProviderKakao
}

func (KakaoExtractor) Extract(attrs map[string]any) (core.Profile, error) {
	var subjectID string
	if len(attrs) > 0 {
		subjectID = stringifyID(attrs["id"])
	}
	if subjectID == "" {
		return core.Profile{}, core.NewMissingFieldError(core.ProviderKakao, "id")
	}

	kakaoAccount := readMap(attrs, "kakao_account")
	profile := readMap(kakaoAccount, "profile")

	displayName := readString(profile, "nickname")
	if displayName == "" {
		displayName = defaultDisplayName
	}

	return core.Profile{
		Provider:    core.ProviderKakao,
		SubjectID:   subjectID,
		Email:       readString(kakaoAccount, "email"),
		DisplayName: displayName,
		AvatarURL:   readString(profile, "thumbnail_image_url"),
	}, nil
}
