package handlers

import (
	"time"

	"sentryhome/internal/backend"
	"sentryhome/internal/config"
	"sentryhome/internal/notify"
	"sentryhome/internal/repos"
	"sentryhome/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CartHandler *CartHandler
	AuthHandler *AuthHandler
	Auth        *services.AuthService
	Changed     *notify.Broadcaster
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	guestRepo := repos.NewGuestCartRepo(db)
	sessRepo := repos.NewSessionRepo(db)
	api := backend.New(cfg.APIBaseURL, time.Duration(cfg.HTTPTimeout)*time.Second)
	changed := notify.NewBroadcaster()

	cartSvc := services.NewCartSyncService(sessRepo, guestRepo, api, changed)
	authSvc := &services.AuthService{Sessions: sessRepo, Issuer: api, Cart: cartSvc}

	return &Deps{
		CartHandler: &CartHandler{Cart: cartSvc},
		AuthHandler: &AuthHandler{Auth: authSvc},
		Auth:        authSvc,
		Changed:     changed,
	}
}
