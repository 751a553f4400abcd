package middleware

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/bracket-engine/internal/config"
	"github.com/AdamBeresnev/bracket-engine/internal/httputil"
	users "github.com/AdamBeresnev/bracket-engine/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
	"go.uber.org/zap"
)

const (
	playerIDKey     = "playerID"
	playerNameKey   = "playerName"
	playerRatingKey = "playerRating"
	providerKey     = "provider"
	avatarKey       = "avatarURL"
)

// InitAuth registers the OAuth providers that have credentials configured
// and returns their names.
func InitAuth(cfg config.AuthConfig, logger *zap.Logger) []string {
	var providers []goth.Provider
	if cfg.Discord.Key != "" {
		providers = append(providers, discord.New(cfg.Discord.Key, cfg.Discord.Secret, cfg.Discord.CallbackURL,
			discord.ScopeIdentify, discord.ScopeEmail))
	}
	if cfg.Google.Key != "" {
		providers = append(providers, google.New(cfg.Google.Key, cfg.Google.Secret, cfg.Google.CallbackURL,
			"email", "profile"))
	}
	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	logger.Info("oauth providers configured", zap.Strings("providers", names))
	return names
}

// Login binds the session to p. The token is renewed to prevent fixation.
func Login(ctx context.Context, sessionManager *scs.SessionManager, p *users.Player) error {
	if err := sessionManager.RenewToken(ctx); err != nil {
		return err
	}
	sessionManager.Put(ctx, playerIDKey, p.ID.String())
	sessionManager.Put(ctx, playerNameKey, p.Name)
	sessionManager.Put(ctx, playerRatingKey, p.Rating)
	sessionManager.Put(ctx, providerKey, p.Provider)
	sessionManager.Put(ctx, avatarKey, p.AvatarURL)
	return nil
}

// LoadPlayer puts the session's player, if any, into the request context.
func LoadPlayer(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			idStr := sessionManager.GetString(ctx, playerIDKey)
			if idStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(idStr)
			if err != nil {
				sessionManager.Remove(ctx, playerIDKey)
				next.ServeHTTP(w, r)
				return
			}

			p := &users.Player{
				ID:        id,
				Name:      sessionManager.GetString(ctx, playerNameKey),
				Rating:    sessionManager.GetInt(ctx, playerRatingKey),
				Provider:  sessionManager.GetString(ctx, providerKey),
				AvatarURL: sessionManager.GetString(ctx, avatarKey),
			}
			next.ServeHTTP(w, r.WithContext(users.WithPlayer(ctx, p)))
		})
	}
}

// RequirePlayer rejects requests without a logged-in player.
func RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := users.FromContext(r.Context()); !ok {
			httputil.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
