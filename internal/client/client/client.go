// Package client is the gRPC client of authkeeper.v1.AuthService used by
// the CLI. It attaches the access token to protected calls and renews it
// once, transparently, when the server rejects it.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type SignUpRequest struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

type Profile struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	ClientID  string
	Clients   []ClientInfo
}

type ClientInfo struct {
	ClientID  string
	CreatedAt string
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	dialOpts    []grpc.DialOption

	mu      sync.Mutex
	session *Session
	// onRenew is called after a transparent renewal so the caller can
	// persist the new tokens.
	onRenew func(*Session)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// NewAuthKeeperClient creates a client for endpointURL. Extra dial options
// are appended to the defaults, which tests use to dial in-memory.
func NewAuthKeeperClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, dialOpts: opts}
	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *GRPCClient) initGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(c.endpointURL, opts...)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *GRPCClient) SetSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// Session returns a copy of the current session, or nil.
func (c *GRPCClient) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	cp := *c.session
	return &cp
}

// OnRenew registers fn to receive the session after every successful renewal.
func (c *GRPCClient) OnRenew(fn func(*Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRenew = fn
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if method != pb.FullMethod(pb.MethodWhoAmI) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	err := invoker(withAccessToken(ctx, sess.AccessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrInvalidToken.Error() {
		return err
	}
	if sess.RefreshToken == "" || sess.ClientID == "" {
		return err
	}

	if err := c.Renew(ctx); err != nil {
		return err
	}

	// Tokens renewed, retry once with the new access token.
	return invoker(withAccessToken(ctx, c.Session().AccessToken), method, req, reply, cc, opts...)
}

func (c *GRPCClient) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, pb.FullMethod(method), pb.NewMessage(fields), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) SignUp(ctx context.Context, r SignUpRequest) (string, error) {
	resp, err := c.invoke(ctx, pb.MethodSignUp, map[string]any{
		pb.FieldUsername:  r.Username,
		pb.FieldPassword:  r.Password,
		pb.FieldFirstName: r.FirstName,
		pb.FieldLastName:  r.LastName,
		pb.FieldEmail:     r.Email,
	})
	if err != nil {
		return "", mapError(err)
	}
	return pb.GetString(resp, pb.FieldUsername), nil
}

// SignIn opens a new session and makes it current.
func (c *GRPCClient) SignIn(ctx context.Context, username, password string) (*Session, error) {
	resp, err := c.invoke(ctx, pb.MethodSignIn, map[string]any{
		pb.FieldUsername: username,
		pb.FieldPassword: password,
	})
	if err != nil {
		return nil, mapError(err)
	}

	sess := &Session{
		Username:     username,
		ClientID:     pb.GetString(resp, pb.FieldClientID),
		AccessToken:  pb.GetString(resp, pb.FieldAccessToken),
		RefreshToken: pb.GetString(resp, pb.FieldRefreshToken),
		ExpiresIn:    pb.GetInt64(resp, pb.FieldExpiresIn),
	}
	c.SetSession(sess)
	return sess, nil
}

// SignOut ends the current session on the server and forgets it locally.
func (c *GRPCClient) SignOut(ctx context.Context) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	if _, err := c.invoke(ctx, pb.MethodSignOut, map[string]any{
		pb.FieldUsername: sess.Username,
		pb.FieldClientID: sess.ClientID,
	}); err != nil {
		return mapError(err)
	}

	c.SetSession(nil)
	return nil
}

// Renew exchanges the refresh token for a new access token. A rotated
// refresh token replaces the stored one.
func (c *GRPCClient) Renew(ctx context.Context) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	resp, err := c.invoke(ctx, pb.MethodRenewToken, map[string]any{
		pb.FieldRefreshToken: sess.RefreshToken,
		pb.FieldClientID:     sess.ClientID,
	})
	if err != nil {
		return mapError(err)
	}

	sess.AccessToken = pb.GetString(resp, pb.FieldAccessToken)
	sess.ExpiresIn = pb.GetInt64(resp, pb.FieldExpiresIn)
	if rotated := pb.GetString(resp, pb.FieldRefreshToken); rotated != "" {
		sess.RefreshToken = rotated
	}
	c.mu.Lock()
	c.session = sess
	notify := c.onRenew
	c.mu.Unlock()

	if notify != nil {
		cp := *sess
		notify(&cp)
	}
	return nil
}

func (c *GRPCClient) WhoAmI(ctx context.Context) (*Profile, error) {
	resp, err := c.invoke(ctx, pb.MethodWhoAmI, nil)
	if err != nil {
		return nil, mapError(err)
	}

	p := &Profile{
		Username:  pb.GetString(resp, pb.FieldUsername),
		FirstName: pb.GetString(resp, pb.FieldFirstName),
		LastName:  pb.GetString(resp, pb.FieldLastName),
		Email:     pb.GetString(resp, pb.FieldEmail),
		ClientID:  pb.GetString(resp, pb.FieldClientID),
	}
	for _, v := range resp.GetFields()[pb.FieldClients].GetListValue().GetValues() {
		item := v.GetStructValue()
		p.Clients = append(p.Clients, ClientInfo{
			ClientID:  pb.GetString(item, pb.FieldClientID),
			CreatedAt: pb.GetString(item, pb.FieldCreatedAt),
		})
	}
	return p, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// mapError keeps the server's message next to a client sentinel so callers
// can both match and print it.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.AlreadyExists, codes.Aborted:
		return fmt.Errorf("%w: %s", ErrConflict, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
