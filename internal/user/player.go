package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/markbates/goth"
)

type ContextKey string

const PlayerKey ContextKey = "player"

// providerNamespace derives stable player ids from OAuth identities, so the
// same account always registers as the same participant.
var providerNamespace = uuid.MustParse("6f1c2a7e-4b4d-4d8e-9a55-3c0b1e2f9d10")

// Player is the identity a request acts as. It lives in the session; the
// engine only ever sees its ID and Name.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Provider  string    `json:"provider,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

func (p *Player) Guest() bool {
	return p.Provider == ""
}

// FromGoth maps a completed OAuth login to a player.
func FromGoth(u goth.User) *Player {
	name := u.NickName
	if name == "" {
		name = u.Name
	}
	if name == "" {
		name = u.Email
	}
	return &Player{
		ID:        uuid.NewSHA1(providerNamespace, []byte(u.Provider+":"+u.UserID)),
		Name:      name,
		Provider:  u.Provider,
		AvatarURL: u.AvatarURL,
	}
}

// NewGuest returns a fresh anonymous player.
func NewGuest(name string) *Player {
	if name == "" {
		name = "Guest"
	}
	return &Player{ID: uuid.New(), Name: name}
}

func WithPlayer(ctx context.Context, p *Player) context.Context {
	return context.WithValue(ctx, PlayerKey, p)
}

func FromContext(ctx context.Context) (*Player, bool) {
	p, ok := ctx.Value(PlayerKey).(*Player)
	return p, ok && p != nil
}
