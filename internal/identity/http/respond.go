package http

import (
	"github.com/openclass/identity/internal/identity/domain"
	"github.com/openclass/identity/pkg/authsdk"
)

func tokenResponse(pair *domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}

func principalResponse(p domain.Principal) authsdk.PrincipalResponse {
	return authsdk.PrincipalResponse{
		Subject:   p.UserID,
		Username:  p.Username,
		Roles:     p.Roles,
		JTI:       p.JTI,
		IssuedAt:  p.IssuedAt.Unix(),
		ExpiresAt: p.ExpiresAt.Unix(),
	}
}
