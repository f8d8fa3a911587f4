package usecase

import "context"

// TokenVerifier resolves an identity-provider ID token to a uid.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// AvatarResolver turns a stored avatar reference into a displayable URL.
type AvatarResolver interface {
	AvatarURL(ctx context.Context, ref string) (string, error)
}
