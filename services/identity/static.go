package identitysvc

import (
	"context"
	"strings"
	"sync"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/user"
)

// devTokenPrefix marks development tokens: "dev:<email>" signs in as <email>.
const devTokenPrefix = "dev:"

// StaticProvider knows a fixed set of tokens. Used in development and tests.
type StaticProvider struct {
	mutex      sync.RWMutex
	identities map[string]user.Identity
	devTokens  bool
}

var _ user.IdentityProvider = (*StaticProvider)(nil)

// NewStaticProvider returns a provider accepting the registered tokens, plus "dev:<email>" tokens when devTokens is set.
func NewStaticProvider(devTokens bool) *StaticProvider {
	return &StaticProvider{identities: make(map[string]user.Identity), devTokens: devTokens}
}

func (p *StaticProvider) Register(idToken string, id user.Identity) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.identities[idToken] = id
}

func (p *StaticProvider) Verify(_ context.Context, idToken string) (user.Identity, error) {
	p.mutex.RLock()
	id, ok := p.identities[idToken]
	p.mutex.RUnlock()
	if ok {
		return id, nil
	}
	if p.devTokens && strings.HasPrefix(idToken, devTokenPrefix) {
		if email := strings.TrimPrefix(idToken, devTokenPrefix); email != "" {
			return user.Identity{Email: email, Subject: email}, nil
		}
	}
	return user.Identity{}, core.NewAuthError("Invalid sign in token.")
}
