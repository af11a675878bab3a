package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	session *client.Session

	signUpReq client.SignUpRequest
	signUpErr error
	signInPw  string
	signInErr error
	signOut   int
	signOutEr error
	renewErr  error
	profile   *client.Profile
	closed    bool
}

func (f *fakeClient) SignUp(_ context.Context, r client.SignUpRequest) (string, error) {
	f.signUpReq = r
	return r.Username, f.signUpErr
}

func (f *fakeClient) SignIn(_ context.Context, username, password string) (*client.Session, error) {
	f.signInPw = password
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.session = &client.Session{Username: username, ClientID: "c-1", AccessToken: "a", RefreshToken: "r", ExpiresIn: 60}
	return f.session, nil
}

func (f *fakeClient) SignOut(context.Context) error {
	f.signOut++
	if f.signOutEr != nil {
		return f.signOutEr
	}
	f.session = nil
	return nil
}

func (f *fakeClient) Renew(context.Context) error {
	if f.renewErr != nil {
		return f.renewErr
	}
	f.session.AccessToken = "a2"
	return nil
}

func (f *fakeClient) WhoAmI(context.Context) (*client.Profile, error) { return f.profile, nil }
func (f *fakeClient) Session() *client.Session                        { return f.session }
func (f *fakeClient) SetSession(s *client.Session)                    { f.session = s }
func (f *fakeClient) Close() error                                    { f.closed = true; return nil }

type fakeStore struct {
	saved   *client.Session
	cleared bool
	saveErr error
}

func (s *fakeStore) Load() (*client.Session, error) {
	if s.saved == nil {
		return nil, client.ErrNoSession
	}
	return s.saved, nil
}
func (s *fakeStore) Save(sess *client.Session) error { s.saved = sess; return s.saveErr }
func (s *fakeStore) Clear() error                    { s.cleared = true; s.saved = nil; return nil }

func stubInputs(t *testing.T, answers []string, password []byte) {
	t.Helper()
	origLine, origPw, origNew := promptLine, promptPassword, promptNewPassword
	promptLine = func(_ *bufio.Reader, _ io.Writer, _ string) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	promptPassword = func(_ io.Writer, _ string) ([]byte, error) { return password, nil }
	promptNewPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		promptLine = origLine
		promptPassword = origPw
		promptNewPassword = origNew
	})
}

func newTestApp() (*App, *fakeClient, *fakeStore, *bytes.Buffer) {
	fc, fs, out := &fakeClient{}, &fakeStore{}, &bytes.Buffer{}
	return &App{client: fc, store: fs, out: out}, fc, fs, out
}

func TestSignUp(t *testing.T) {
	a, fc, _, out := newTestApp()
	pw := []byte("secret")
	stubInputs(t, []string{"Alice", "", "a@example.com"}, pw)

	require.NoError(t, a.SignUp(context.Background(), []string{"alice"}))
	assert.Equal(t, client.SignUpRequest{Username: "alice", Password: "secret", FirstName: "Alice", Email: "a@example.com"}, fc.signUpReq)
	assert.Contains(t, out.String(), "User alice created")
	assert.Equal(t, make([]byte, len(pw)), pw, "password wiped")
}

func TestSignUp_PromptsForUsername(t *testing.T) {
	a, fc, _, _ := newTestApp()
	stubInputs(t, []string{"bob", "", "", ""}, []byte("pw"))

	require.NoError(t, a.SignUp(context.Background(), nil))
	assert.Equal(t, "bob", fc.signUpReq.Username)
}

func TestSignUp_Conflict(t *testing.T) {
	a, fc, _, _ := newTestApp()
	fc.signUpErr = fmt.Errorf("%w: user already exists", client.ErrConflict)
	stubInputs(t, []string{"", "", ""}, []byte("pw"))

	assert.ErrorIs(t, a.SignUp(context.Background(), []string{"alice"}), client.ErrConflict)
}

func TestSignUp_PasswordMismatchSendsNothing(t *testing.T) {
	a, fc, _, _ := newTestApp()
	stubInputs(t, nil, nil)
	promptNewPassword = func(io.Writer) ([]byte, error) { return nil, errPasswordMismatch }

	assert.ErrorIs(t, a.SignUp(context.Background(), []string{"alice"}), errPasswordMismatch)
	assert.Empty(t, fc.signUpReq.Username)
}

func TestSignIn_SavesSession(t *testing.T) {
	a, fc, fs, out := newTestApp()
	stubInputs(t, nil, []byte("secret"))

	require.NoError(t, a.SignIn(context.Background(), []string{"alice"}))
	assert.Equal(t, "secret", fc.signInPw)
	require.NotNil(t, fs.saved)
	assert.Equal(t, "c-1", fs.saved.ClientID)
	assert.Contains(t, out.String(), "Signed in as alice")
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(alice)", a.getStatus())
}

func TestSignIn_Failure(t *testing.T) {
	a, fc, fs, _ := newTestApp()
	fc.signInErr = client.ErrUnauthorized
	stubInputs(t, nil, []byte("bad"))

	assert.ErrorIs(t, a.SignIn(context.Background(), []string{"alice"}), client.ErrUnauthorized)
	assert.Nil(t, fs.saved)
	assert.False(t, a.isLoggedIn())
}

func TestSignOut(t *testing.T) {
	a, fc, fs, out := newTestApp()
	fc.session = &client.Session{Username: "alice", ClientID: "c-1"}

	require.NoError(t, a.SignOut(context.Background()))
	assert.True(t, fs.cleared)
	assert.Nil(t, fc.session)
	assert.Contains(t, out.String(), "Signed out")
}

func TestSignOut_AlreadyLoggedOutStillClears(t *testing.T) {
	a, fc, fs, _ := newTestApp()
	fc.session = &client.Session{Username: "alice", ClientID: "c-1"}
	fc.signOutEr = fmt.Errorf("%w: user already logged out", client.ErrUnauthorized)

	err := a.SignOut(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.True(t, fs.cleared)
	assert.Nil(t, fc.session)
}

func TestSignOut_UnavailableKeepsSession(t *testing.T) {
	a, fc, fs, _ := newTestApp()
	fc.session = &client.Session{Username: "alice", ClientID: "c-1"}
	fc.signOutEr = client.ErrUnavailable

	assert.ErrorIs(t, a.SignOut(context.Background()), client.ErrUnavailable)
	assert.False(t, fs.cleared)
	assert.NotNil(t, fc.session)
}

func TestRenew(t *testing.T) {
	a, fc, fs, out := newTestApp()
	fc.session = &client.Session{Username: "alice", ClientID: "c-1", AccessToken: "a", ExpiresIn: 60}

	require.NoError(t, a.Renew(context.Background()))
	assert.Equal(t, "a2", fs.saved.AccessToken)
	assert.Contains(t, out.String(), "valid for 60s")

	fc.renewErr = errors.New("boom")
	assert.Error(t, a.Renew(context.Background()))
}

func TestWhoAmI(t *testing.T) {
	a, fc, _, out := newTestApp()
	fc.profile = &client.Profile{
		Username:  "alice",
		FirstName: "Alice",
		ClientID:  "c-2",
		Clients:   []client.ClientInfo{{ClientID: "c-1"}, {ClientID: "c-2"}},
	}

	require.NoError(t, a.WhoAmI(context.Background()))
	text := out.String()
	assert.Contains(t, text, "user:   alice")
	assert.Contains(t, text, "active sessions: 2")
	assert.NotContains(t, text, "email:")

	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Equal(t, " * c-2", strings.TrimRight(lines[len(lines)-1], " "))
}

func TestExec_UnknownCommand(t *testing.T) {
	a, _, _, _ := newTestApp()
	assert.ErrorIs(t, a.exec(context.Background(), "addnote", nil), errUnknownCommand)
}

func TestRun_OneShotClosesClient(t *testing.T) {
	a, fc, _, _ := newTestApp()
	fc.profile = &client.Profile{Username: "alice"}

	require.NoError(t, a.Run(context.Background(), []string{"whoami"}))
	assert.True(t, fc.closed)
}
