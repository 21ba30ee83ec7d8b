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

// Package versioning keeps the append-only audit log of entity mutations.
package versioning

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/tomoncle/keeper/database"
	"github.com/tomoncle/keeper/entity"
	"github.com/uptrace/bun"
)

// ErrNotImplemented is returned by the mutating operations the log refuses.
var ErrNotImplemented = errors.New("object versions are immutable")

func init() {
	database.RegisteredModel(database.NewModelAdapter((*entity.ObjectVersion)(nil), 10))
}

// Store is the audit persistence boundary.
type Store interface {
	// Add assigns ID and UpdatedOn, persists the record and returns its ID.
	Add(ctx context.Context, version *entity.ObjectVersion) (uuid.UUID, error)

	// GetByObject returns the records of one object, most recent first.
	GetByObject(ctx context.Context, objectType string, tenant uuid.UUID, objectID uuid.UUID) ([]*entity.ObjectVersion, error)

	// GetByObjectID returns the records of an object id of any type, most recent first.
	GetByObjectID(ctx context.Context, objectID uuid.UUID) ([]*entity.ObjectVersion, error)

	// GetAll returns every record, most recent first.
	GetAll(ctx context.Context) ([]*entity.ObjectVersion, error)

	// GetByID returns a record or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ObjectVersion, error)

	// Update always fails with ErrNotImplemented.
	Update(ctx context.Context, version *entity.ObjectVersion) error

	// Delete always fails with ErrNotImplemented.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BunStore is a Store over a bun connection.
type BunStore struct {
	db     bun.IDB
	now    func() time.Time
	logger database.Logger
}

var _ Store = (*BunStore)(nil)

// Option configures a BunStore.
type Option func(*BunStore)

// WithClock overrides the time source used for UpdatedOn.
func WithClock(now func() time.Time) Option {
	return func(s *BunStore) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(logger database.Logger) Option {
	return func(s *BunStore) { s.logger = logger }
}

// NewStore returns a Store backed by db. The connection is not owned.
func NewStore(db bun.IDB, opts ...Option) *BunStore {
	s := &BunStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = database.GetLogger()
	}
	return s
}

func (s *BunStore) Add(ctx context.Context, version *entity.ObjectVersion) (uuid.UUID, error) {
	if version == nil {
		return uuid.Nil, errors.New("object version is nil")
	}
	version.ID = uuid.New()
	version.UpdatedOn = s.now().UTC()
	if _, err := s.db.NewInsert().Model(version).Exec(ctx); err != nil {
		if ok, kind := database.IsSqlError(err); ok {
			s.logger.Error("object version insert rejected", "object_type", version.ObjectType, "object_id", version.ObjectID, "kind", kind)
		}
		return uuid.Nil, errors.Wrapf(err, "insert object version for %s %s", version.ObjectType, version.ObjectID)
	}
	return version.ID, nil
}

func (s *BunStore) GetByObject(ctx context.Context, objectType string, tenant uuid.UUID, objectID uuid.UUID) ([]*entity.ObjectVersion, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.object_type = ?", objectType).
			Where("?TableAlias.object_tenant = ?", tenant).
			Where("?TableAlias.object_id = ?", objectID)
	})
}

func (s *BunStore) GetByObjectID(ctx context.Context, objectID uuid.UUID) ([]*entity.ObjectVersion, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.object_id = ?", objectID)
	})
}

func (s *BunStore) GetAll(ctx context.Context) ([]*entity.ObjectVersion, error) {
	return s.list(ctx, nil)
}

func (s *BunStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.ObjectVersion, error) {
	version := new(entity.ObjectVersion)
	err := s.db.NewSelect().Model(version).Where("?TableAlias.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select object version")
	}
	return version, nil
}

func (s *BunStore) Update(context.Context, *entity.ObjectVersion) error {
	return ErrNotImplemented
}

func (s *BunStore) Delete(context.Context, uuid.UUID) error {
	return ErrNotImplemented
}

func (s *BunStore) list(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) ([]*entity.ObjectVersion, error) {
	versions := make([]*entity.ObjectVersion, 0)
	q := s.db.NewSelect().Model(&versions)
	if where != nil {
		q = where(q)
	}
	if err := q.OrderExpr("?TableAlias.updated_on DESC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, "select object versions")
	}
	return versions, nil
}
