package grpc

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.sessions.SignUp(ctx, services.SignUpParams{
		Username:  pb.GetString(req, pb.FieldUsername),
		Password:  pb.GetString(req, pb.FieldPassword),
		FirstName: pb.GetString(req, pb.FieldFirstName),
		LastName:  pb.GetString(req, pb.FieldLastName),
		Email:     pb.GetString(req, pb.FieldEmail),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "username", user.Username)
	return pb.NewMessage(map[string]any{
		pb.FieldStatus:   http.StatusOK,
		pb.FieldUsername: user.Username,
	}), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.sessions.SignIn(ctx, pb.GetString(req, pb.FieldUsername), pb.GetString(req, pb.FieldPassword))
	if err != nil {
		return nil, toStatus(err)
	}

	return pb.NewMessage(map[string]any{
		pb.FieldStatus:       http.StatusOK,
		pb.FieldRefreshToken: res.RefreshToken,
		pb.FieldAccessToken:  res.AccessToken,
		pb.FieldClientID:     res.ClientID,
		pb.FieldExpiresIn:    res.ExpiresIn,
	}), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.sessions.SignOut(ctx, pb.GetString(req, pb.FieldUsername), pb.GetString(req, pb.FieldClientID))
	if err != nil {
		return nil, toStatus(err)
	}

	return pb.NewMessage(map[string]any{
		pb.FieldStatus:   http.StatusOK,
		pb.FieldUsername: user.Username,
	}), nil
}

func (s *GRPCServer) RenewToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.sessions.RenewToken(ctx, pb.GetString(req, pb.FieldRefreshToken), pb.GetString(req, pb.FieldClientID))
	if err != nil {
		return nil, toStatus(err)
	}

	out := map[string]any{
		pb.FieldStatus:      http.StatusOK,
		pb.FieldAccessToken: res.AccessToken,
		pb.FieldExpiresIn:   res.ExpiresIn,
	}
	if res.RefreshToken != "" {
		out[pb.FieldRefreshToken] = res.RefreshToken
	}
	return pb.NewMessage(out), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, toStatus(common.ErrMissingToken)
	}

	sessions, err := s.sessions.Sessions(ctx, id.User.Username)
	if err != nil {
		return nil, toStatus(err)
	}

	clients := make([]any, 0, len(sessions))
	for _, c := range sessions {
		clients = append(clients, map[string]any{
			pb.FieldClientID:  c.ClientID,
			pb.FieldCreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return pb.NewMessage(map[string]any{
		pb.FieldStatus:    http.StatusOK,
		pb.FieldUsername:  id.User.Username,
		pb.FieldFirstName: id.User.FirstName,
		pb.FieldLastName:  id.User.LastName,
		pb.FieldEmail:     id.User.Email,
		pb.FieldClientID:  id.Client.ClientID,
		pb.FieldClients:   clients,
	}), nil
}
