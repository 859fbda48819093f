package store

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{"id", "email", "password", "name", "college", "created_at"}

// CreateUser inserts a user. A duplicate email returns ErrEmailTaken.
func (s *Store) CreateUser(email, password, name, college string) (*User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("create user: %w: email and password are required", ErrInvalidInput)
	}
	id, err := s.insert(s.psql.Insert("users").
		Columns("email", "password", "name", "college").
		Values(email, password, name, college))
	if err != nil {
		if errors.Is(err, ErrConstraint) {
			return nil, fmt.Errorf("create user (email: %s): %w", email, ErrEmailTaken)
		}
		return nil, fmt.Errorf("create user (email: %s): %w", email, err)
	}
	return s.GetUser(id)
}

func (s *Store) GetUser(id int64) (*User, error) {
	var u User
	if err := s.selectOne(&u, s.psql.Select(userColumns...).From("users").Where(sq.Eq{"id": id})); err != nil {
		return nil, fmt.Errorf("get user (id: %d): %w", id, err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(email string) (*User, error) {
	var u User
	if err := s.selectOne(&u, s.psql.Select(userColumns...).From("users").Where(sq.Eq{"email": email})); err != nil {
		return nil, fmt.Errorf("get user (email: %s): %w", email, err)
	}
	return &u, nil
}

// AuthenticateUser compares the password verbatim against the stored one.
func (s *Store) AuthenticateUser(email, password string) (*User, error) {
	var u User
	err := s.selectOne(&u, s.psql.Select(userColumns...).From("users").
		Where(sq.Eq{"email": email, "password": password}))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate user (email: %s): %w", email, err)
	}
	return &u, nil
}

func (s *Store) EmailExists(email string) (bool, error) {
	var count int
	query, args, err := s.psql.Select("COUNT(*)").From("users").Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build SQL query (email: %s): %w", email, err)
	}
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check email exists (email: %s): %w", email, err)
	}
	return count > 0, nil
}

func (s *Store) UpdateUser(id int64, p UserPatch) error {
	fields := map[string]any{}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.College != nil {
		fields["college"] = *p.College
	}
	if err := s.patch("users", id, fields); err != nil {
		if errors.Is(err, ErrConstraint) {
			return fmt.Errorf("update user (id: %d): %w", id, ErrEmailTaken)
		}
		return fmt.Errorf("update user (id: %d): %w", id, err)
	}
	return nil
}

// DeleteUser removes the user and, through ON DELETE CASCADE, everything they own.
func (s *Store) DeleteUser(id int64) error {
	if err := s.remove("users", id); err != nil {
		return fmt.Errorf("delete user (id: %d): %w", id, err)
	}
	return nil
}
