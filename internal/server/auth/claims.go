package auth

import "github.com/dmitrijs2005/authkeeper/internal/server/models"

// ClaimsProvider supplies extra claims merged into every access token
// issued for user. It cannot override the reserved claims.
type ClaimsProvider interface {
	Claims(user *models.User) map[string]any
}

// ClaimsProviderFunc adapts a plain function to ClaimsProvider.
type ClaimsProviderFunc func(user *models.User) map[string]any

func (f ClaimsProviderFunc) Claims(user *models.User) map[string]any {
	return f(user)
}

// NoClaims adds nothing to the token.
var NoClaims ClaimsProvider = ClaimsProviderFunc(func(*models.User) map[string]any { return nil })

// ProfileClaims copies the non-empty profile fields of the user into the
// token so downstream services can greet the user without a lookup.
var ProfileClaims ClaimsProvider = ClaimsProviderFunc(func(u *models.User) map[string]any {
	out := map[string]any{}
	if u.FirstName != "" {
		out["firstName"] = u.FirstName
	}
	if u.LastName != "" {
		out["lastName"] = u.LastName
	}
	if u.Email != "" {
		out["email"] = u.Email
	}
	return out
})
