package entity

import (
	"fmt"

	"entity-rpc/codec"
)

// User is identified by ID; Name and Email are mutable.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserMethod string

const (
	CreateUser UserMethod = "createUser"
	DeleteUser UserMethod = "deleteUser"
	UpdateUser UserMethod = "updateUser"
)

func (m UserMethod) Family() Family { return FamilyUser }
func (m UserMethod) String() string { return string(m) }

func ParseUserMethod(s string) (UserMethod, error) {
	switch m := UserMethod(s); m {
	case CreateUser, DeleteUser, UpdateUser:
		return m, nil
	}
	return "", fmt.Errorf("%w: user %q", ErrUnknownMethod, s)
}

// UserParam is the closed set of user operation payloads.
type UserParam interface {
	Param
	userParam()
}

type CreateUserParam struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type DeleteUserParam struct {
	UserID string `json:"userId"`
}

// UpdateUserParam changes only the fields that are set.
type UpdateUserParam struct {
	UserID   string  `json:"userId"`
	NewName  *string `json:"newName,omitempty"`
	NewEmail *string `json:"newEmail,omitempty"`
}

func (CreateUserParam) Family() Family     { return FamilyUser }
func (CreateUserParam) Method() Method     { return CreateUser }
func (p CreateUserParam) TargetID() string { return p.ID }
func (CreateUserParam) userParam()         {}

func (DeleteUserParam) Family() Family     { return FamilyUser }
func (DeleteUserParam) Method() Method     { return DeleteUser }
func (p DeleteUserParam) TargetID() string { return p.UserID }
func (DeleteUserParam) userParam()         {}

func (UpdateUserParam) Family() Family     { return FamilyUser }
func (UpdateUserParam) Method() Method     { return UpdateUser }
func (p UpdateUserParam) TargetID() string { return p.UserID }
func (UpdateUserParam) userParam()         {}

func userVariant[P UserParam](m UserMethod) codec.Variant[UserParam] {
	return codec.Variant[UserParam]{
		Key: m.String(),
		Decode: func(c codec.Codec, raw []byte) (UserParam, error) {
			p, err := codec.Payload[P](c, raw)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

// Trial order: createUser, deleteUser, updateUser.
var userParamUnion = codec.NewUnion("User.Param",
	userVariant[CreateUserParam](CreateUser),
	userVariant[DeleteUserParam](DeleteUser),
	userVariant[UpdateUserParam](UpdateUser),
)

func EncodeUserParam(c codec.Codec, p UserParam) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("entity: encode User.Param: nil")
	}
	return codec.EncodeVariant(c, p.Method().String(), p)
}

func DecodeUserParam(c codec.Codec, data []byte) (UserParam, error) {
	return userParamUnion.Decode(c, data)
}
