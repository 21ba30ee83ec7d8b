/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package security holds the password hashing helper.
package security

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches bcrypt.DefaultCost.
const DefaultCost = bcrypt.DefaultCost

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, or DefaultCost when cost is
// outside the bcrypt range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

// Verify reports whether password matches hashed. A malformed hash is an
// error; a mismatch is not.
func (h *PasswordHasher) Verify(password, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	}
	return false, errors.Wrap(err, "verify password")
}

// HashPassword hashes password with DefaultCost.
func HashPassword(password string) (string, error) {
	return NewPasswordHasher(DefaultCost).Hash(password)
}

// VerifyPassword reports whether password matches hashed. Malformed hashes
// do not match.
func VerifyPassword(password, hashed string) bool {
	ok, _ := NewPasswordHasher(DefaultCost).Verify(password, hashed)
	return ok
}
