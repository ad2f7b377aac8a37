package credentials

import (
	"context"

	"golang.org/x/oauth2"

	apperrors "github.com/far7tna/portal/internal/errors"
)

var _ oauth2.TokenSource = storeTokenSource{}

type storeTokenSource struct {
	ctx   context.Context
	store *Store
}

// TokenSource exposes the stored access token as an oauth2.TokenSource. It reads the
// store on every call so a refreshed token is picked up immediately.
func (s *Store) TokenSource(ctx context.Context) oauth2.TokenSource {
	return storeTokenSource{ctx: ctx, store: s}
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	access := ts.store.AccessToken(ts.ctx)
	if access == "" {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthorized, "no access token stored")
	}
	return &oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: ts.store.RefreshToken(ts.ctx),
	}, nil
}
