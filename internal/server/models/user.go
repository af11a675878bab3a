// Package models holds the persisted entities of the session lifecycle: a
// User and the registry of device Clients it owns.
package models

import "time"

// User is an account together with every device session it ever opened.
// Clients are only appended and invalidated, never removed.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	// Version is bumped on every successful save and used for
	// compare-and-swap writes.
	Version   int64
	Clients   []Client
	CreatedAt time.Time
}

// Client is one logged-in device. The (ClientID, RefreshToken) pair is fixed
// at sign-in; Invalidated only ever goes from false to true.
type Client struct {
	ClientID     string
	RefreshToken string
	Invalidated  bool
	CreatedAt    time.Time
}

// Invalidate marks the client as logged out. Calling it again is a no-op.
func (c *Client) Invalidate() {
	c.Invalidated = true
}

// Active reports whether the client may still be used.
func (c *Client) Active() bool {
	return !c.Invalidated
}

// AddClient appends a new active client and returns a pointer to it.
// ClientID uniqueness is the caller's job; ids come from a random generator.
func (u *User) AddClient(clientID, refreshToken string) *Client {
	u.Clients = append(u.Clients, Client{
		ClientID:     clientID,
		RefreshToken: refreshToken,
		CreatedAt:    time.Now().UTC(),
	})
	return &u.Clients[len(u.Clients)-1]
}

// FindClientByID returns the client with the given id regardless of its
// state, or nil.
func (u *User) FindClientByID(clientID string) *Client {
	for i := range u.Clients {
		if u.Clients[i].ClientID == clientID {
			return &u.Clients[i]
		}
	}
	return nil
}

// FindActiveClientByID is FindClientByID restricted to active clients.
func (u *User) FindActiveClientByID(clientID string) *Client {
	c := u.FindClientByID(clientID)
	if c == nil || !c.Active() {
		return nil
	}
	return c
}

// ActiveClients returns a copy of the clients that are not invalidated.
func (u *User) ActiveClients() []Client {
	active := make([]Client, 0, len(u.Clients))
	for _, c := range u.Clients {
		if c.Active() {
			active = append(active, c)
		}
	}
	return active
}

// FindActiveClientByRefreshToken looks for an active client matching both
// refreshToken and clientID. A refresh token alone never matches.
func FindActiveClientByRefreshToken(clients []Client, refreshToken, clientID string) *Client {
	if refreshToken == "" || clientID == "" {
		return nil
	}
	for i := range clients {
		c := &clients[i]
		if c.Active() && c.RefreshToken == refreshToken && c.ClientID == clientID {
			return c
		}
	}
	return nil
}
