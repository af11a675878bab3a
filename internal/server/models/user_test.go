package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddClient_AppendsActiveClient(t *testing.T) {
	u := &User{Username: "alice"}

	c := u.AddClient("c1", "r1")
	require.NotNil(t, c)
	assert.Equal(t, "c1", c.ClientID)
	assert.Equal(t, "r1", c.RefreshToken)
	assert.False(t, c.Invalidated)
	assert.False(t, c.CreatedAt.IsZero())

	u.AddClient("c2", "r2")
	assert.Len(t, u.Clients, 2)
	assert.Equal(t, "c1", u.Clients[0].ClientID, "insertion order is kept")
}

func TestAddClient_ReturnsPointerIntoRegistry(t *testing.T) {
	u := &User{}
	u.AddClient("c1", "r1")
	c := u.AddClient("c2", "r2")

	c.Invalidate()
	assert.True(t, u.Clients[1].Invalidated)
}

func TestFindClientByID(t *testing.T) {
	u := &User{Clients: []Client{
		{ClientID: "c1", RefreshToken: "r1"},
		{ClientID: "c2", RefreshToken: "r2", Invalidated: true},
	}}

	assert.Equal(t, "c1", u.FindClientByID("c1").ClientID)
	assert.Equal(t, "c2", u.FindClientByID("c2").ClientID, "invalidated clients are still found")
	assert.Nil(t, u.FindClientByID("nope"))

	assert.NotNil(t, u.FindActiveClientByID("c1"))
	assert.Nil(t, u.FindActiveClientByID("c2"))
	assert.Nil(t, u.FindActiveClientByID("nope"))
}

func TestInvalidate_IsOneWayAndIdempotent(t *testing.T) {
	c := &Client{ClientID: "c1"}
	assert.True(t, c.Active())

	c.Invalidate()
	c.Invalidate()
	assert.True(t, c.Invalidated)
	assert.False(t, c.Active())
}

func TestActiveClients(t *testing.T) {
	u := &User{Clients: []Client{
		{ClientID: "c1"},
		{ClientID: "c2", Invalidated: true},
		{ClientID: "c3"},
	}}

	active := u.ActiveClients()
	require.Len(t, active, 2)
	assert.Equal(t, "c1", active[0].ClientID)
	assert.Equal(t, "c3", active[1].ClientID)

	active[0].Invalidate()
	assert.False(t, u.Clients[0].Invalidated, "returned slice is a copy")
}

func TestFindActiveClientByRefreshToken(t *testing.T) {
	clients := []Client{
		{ClientID: "c1", RefreshToken: "r1"},
		{ClientID: "c2", RefreshToken: "r2", Invalidated: true},
		{ClientID: "c3", RefreshToken: "r3"},
	}

	tests := []struct {
		name         string
		refreshToken string
		clientID     string
		want         string
	}{
		{name: "match", refreshToken: "r1", clientID: "c1", want: "c1"},
		{name: "token of another client", refreshToken: "r3", clientID: "c1"},
		{name: "wrong token", refreshToken: "wrong-token", clientID: "c1"},
		{name: "wrong client id", refreshToken: "r1", clientID: "wrong-id"},
		{name: "invalidated client", refreshToken: "r2", clientID: "c2"},
		{name: "empty client id", refreshToken: "r1", clientID: ""},
		{name: "empty token", refreshToken: "", clientID: "c1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindActiveClientByRefreshToken(clients, tt.refreshToken, tt.clientID)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ClientID)
		})
	}
}
