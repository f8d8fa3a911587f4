package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type identityChange struct {
	uid     string
	present bool
}

func TestSessionGateNotifiesOnChange(t *testing.T) {
	gate := NewSessionGate()
	var got []identityChange
	gate.OnIdentityChange(func(uid string, present bool) {
		got = append(got, identityChange{uid, present})
	})

	gate.SignIn("S1")
	gate.SignIn("S1") // token refresh, same uid
	gate.SignIn("S2")
	gate.SignOut()
	gate.SignOut()

	assert.Equal(t, []identityChange{
		{"S1", true},
		{"S2", true},
		{"", false},
	}, got)

	uid, ok := gate.Current()
	assert.False(t, ok)
	assert.Empty(t, uid)
}

func TestSessionGateUnregister(t *testing.T) {
	gate := NewSessionGate()
	calls := 0
	unregister := gate.OnIdentityChange(func(string, bool) { calls++ })

	gate.SignIn("S1")
	unregister()
	gate.SignIn("S2")

	assert.Equal(t, 1, calls)
	uid, ok := gate.Current()
	assert.True(t, ok)
	assert.Equal(t, "S2", uid)
}

func TestSessionGateEmptyUIDSignsOut(t *testing.T) {
	gate := NewSessionGate()
	gate.SignIn("S1")

	var last identityChange
	gate.OnIdentityChange(func(uid string, present bool) { last = identityChange{uid, present} })
	gate.SignIn("")

	assert.Equal(t, identityChange{"", false}, last)
}
