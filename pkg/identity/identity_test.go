package identity

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"warehouse-in-go/pkg/model"
)

func TestContextRoundTrip(t *testing.T) {
	id := FromUser(&model.User{ID: "u1", Username: "alice"})
	ctx := Set(context.Background(), id)

	got, ok := Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", got.Username())

	_, ok = Get(context.Background())
	assert.False(t, ok)
}

func TestFromToken(t *testing.T) {
	user := &model.User{ID: "u1", Username: "alice"}
	token := &model.APIToken{ID: "t1", UserID: "u1"}

	id := FromToken(user, token).WithRemoteIP(net.ParseIP("192.0.2.1"))

	assert.Equal(t, "alice", id.Username())
	assert.Equal(t, token, id.Token)
	assert.Equal(t, "192.0.2.1", id.RemoteIP.String())
}

func TestRoles(t *testing.T) {
	assert.False(t, FromUser(&model.User{}).IsAdmin())
	assert.True(t, FromUser(&model.User{IsAdmin: true}).IsAdmin())

	// Admins are implicitly observers
	assert.True(t, FromUser(&model.User{IsAdmin: true}).IsObserver())
	assert.True(t, FromUser(&model.User{IsObserver: true}).IsObserver())
	assert.False(t, FromUser(&model.User{}).IsObserver())

	assert.Equal(t, "", (&Identity{}).Username())
}

func TestScopedTo(t *testing.T) {
	scope := "my-project"
	scoped := FromToken(&model.User{}, &model.APIToken{ProjectScope: &scope})
	unscoped := FromToken(&model.User{}, &model.APIToken{})

	assert.True(t, scoped.ScopedTo("my-project"))
	assert.False(t, scoped.ScopedTo("other-project"))
	assert.True(t, unscoped.ScopedTo("anything"))
	assert.True(t, FromUser(&model.User{}).ScopedTo("anything"))
}
