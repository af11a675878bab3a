// Package proto describes the authkeeper.v1.AuthService wire contract
// shared by the gRPC server and the CLI client. Messages are
// google.protobuf.Struct values keyed by the field names below, so no
// generated code is needed.
package proto

import (
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "authkeeper.v1.AuthService"

const (
	MethodSignUp     = "SignUp"
	MethodSignIn     = "SignIn"
	MethodSignOut    = "SignOut"
	MethodRenewToken = "RenewToken"
	MethodWhoAmI     = "WhoAmI"
)

// Field names, matching the JSON bodies of the HTTP gateway.
const (
	FieldStatus       = "status"
	FieldUsername     = "username"
	FieldPassword     = "password"
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldClientID     = "clientId"
	FieldRefreshToken = "refreshToken"
	FieldAccessToken  = "accessToken"
	FieldExpiresIn    = "expiresIn"
	FieldClients      = "clients"
	FieldCreatedAt    = "createdAt"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// NewMessage builds a Struct from plain Go values. It panics on values
// structpb cannot represent, which only happens on programmer error.
func NewMessage(fields map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// GetString returns a string field or "" when absent or of another kind.
func GetString(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

// GetInt64 returns a numeric field truncated to int64.
func GetInt64(s *structpb.Struct, key string) int64 {
	if s == nil {
		return 0
	}
	return int64(s.GetFields()[key].GetNumberValue())
}
