package identitysvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/user"
)

func TestStaticProvider_Verify(t *testing.T) {
	jane := user.Identity{Email: "jane@lsu.edu", DisplayName: "Jane Doe", Subject: "uid-1"}

	tests := []struct {
		name      string
		devTokens bool
		token     string
		want      user.Identity
		wantErr   bool
	}{
		{name: "registered", token: "token-1", want: jane},
		{name: "registered with dev tokens", devTokens: true, token: "token-1", want: jane},
		{name: "unknown", token: "token-2", wantErr: true},
		{name: "dev token", devTokens: true, token: "dev:bob@lsu.edu", want: user.Identity{Email: "bob@lsu.edu", Subject: "bob@lsu.edu"}},
		{name: "dev token disabled", token: "dev:bob@lsu.edu", wantErr: true},
		{name: "empty dev token", devTokens: true, token: "dev:", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewStaticProvider(tt.devTokens)
			p.Register("token-1", jane)

			got, err := p.Verify(context.Background(), tt.token)
			if tt.wantErr {
				assert.True(t, core.IsAuth(err), err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
