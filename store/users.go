// Package store holds the per-peer in-memory domain collections.
//
// Stores keep insertion order and perform no locking; each instance is
// owned and mutated by exactly one peer.
package store

import (
	"slices"

	"entity-rpc/entity"
)

type Users struct {
	users []entity.User
}

// CreateUser appends a new user. Ids are not checked for duplicates.
func (s *Users) CreateUser(p entity.CreateUserParam) bool {
	s.users = append(s.users, entity.User{ID: p.ID, Name: p.Name, Email: p.Email})
	return true
}

// DeleteUser removes every user with the id. It reports false when no user
// with that id existed.
func (s *Users) DeleteUser(p entity.DeleteUserParam) bool {
	before := len(s.users)
	s.users = slices.DeleteFunc(s.users, func(u entity.User) bool { return u.ID == p.UserID })
	return len(s.users) < before
}

// UpdateUser applies the fields set in p to the first user with the id.
func (s *Users) UpdateUser(p entity.UpdateUserParam) bool {
	i := s.index(p.UserID)
	if i < 0 {
		return false
	}
	if p.NewName != nil {
		s.users[i].Name = *p.NewName
	}
	if p.NewEmail != nil {
		s.users[i].Email = *p.NewEmail
	}
	return true
}

func (s *Users) Get(id string) (entity.User, bool) {
	if i := s.index(id); i >= 0 {
		return s.users[i], true
	}
	return entity.User{}, false
}

func (s *Users) Len() int {
	return len(s.users)
}

// All returns a copy of the users in insertion order.
func (s *Users) All() []entity.User {
	return slices.Clone(s.users)
}

func (s *Users) index(id string) int {
	return slices.IndexFunc(s.users, func(u entity.User) bool { return u.ID == id })
}
