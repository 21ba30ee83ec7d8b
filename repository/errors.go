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

package repository

import (
	"github.com/cockroachdb/errors"
	"github.com/tomoncle/keeper/filter"
)

var (
	// ErrInvalidArgument reports a missing required input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound reports that the update target does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidFilterValue reports a search value that cannot be parsed
	// as the comparable type its operator requires.
	ErrInvalidFilterValue = filter.ErrInvalidFilterValue

	// ErrStoreFailure marks errors returned by the record store.
	ErrStoreFailure = errors.New("store failure")

	// ErrAuditWriteFailure marks a failed audit append after a successful
	// mutation. The mutation result is returned alongside it.
	ErrAuditWriteFailure = errors.New("audit write failure")
)

// IsAuditWriteFailure reports whether err only signals a lost audit record.
func IsAuditWriteFailure(err error) bool {
	return errors.Is(err, ErrAuditWriteFailure)
}
