package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/authkeeper.v1.AuthService/SignIn", FullMethod(MethodSignIn))
}

func TestMessageAccessors(t *testing.T) {
	m := NewMessage(map[string]any{
		FieldUsername:  "alice",
		FieldExpiresIn: int64(600),
	})

	assert.Equal(t, "alice", GetString(m, FieldUsername))
	assert.Equal(t, int64(600), GetInt64(m, FieldExpiresIn))
	assert.Equal(t, "", GetString(m, FieldEmail))
	assert.Equal(t, "", GetString(nil, FieldEmail))
	assert.Equal(t, int64(0), GetInt64(m, FieldUsername))
}

func TestNewMessage_PanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { NewMessage(map[string]any{"bad": struct{}{}}) })
}
