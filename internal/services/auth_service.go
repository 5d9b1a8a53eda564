package services

import (
	"context"
	"errors"

	"sentryhome/internal/notify"
	"sentryhome/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

// TokenIssuer is the slice of the remote API that signs users in.
type TokenIssuer interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthService binds tokens issued by the remote API to local sessions and
// triggers the one-time guest-cart merge after a successful login.
type AuthService struct {
	Sessions *repos.SessionRepo
	Issuer   TokenIssuer
	Cart     *CartSyncService
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string, sink notify.Sink) error {
	token, err := s.Issuer.Login(ctx, email, password)
	if err != nil {
		return ErrBadCreds
	}
	if err := s.Sessions.BindToken(sid, email, token); err != nil {
		return err
	}
	s.Cart.MergeGuestCart(ctx, sid, sink)
	return nil
}

// Logout drops the token. The guest cart is not resurrected from the server
// cart; the session simply starts over as an empty guest.
func (s *AuthService) Logout(sid string) error {
	return s.Sessions.Unbind(sid)
}

func (s *AuthService) IsAuthenticated(sid string) bool {
	_, ok := s.Sessions.Token(sid)
	return ok
}
