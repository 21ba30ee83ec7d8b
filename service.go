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

package keeper

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tomoncle/keeper/database"
	"github.com/tomoncle/keeper/entity"
	"github.com/tomoncle/keeper/repository"
	"github.com/tomoncle/keeper/types"
	"github.com/tomoncle/keeper/versioning"
	"github.com/uptrace/bun"
)

type Service[T any] interface {
	// Get returns a single entity by its identifier, or nil.
	Get(ctx context.Context, id uuid.UUID) (*T, error)

	// All returns all entities, deleted ones included.
	All(ctx context.Context) ([]*T, error)

	// Active returns the entities whose status is Active.
	Active(ctx context.Context) ([]*T, error)

	// Search returns one page of the entities matching the request.
	Search(ctx context.Context, request *types.SearchParameterRequest) (*types.PaginatedResponse[T], error)

	// Page returns one page of all entities.
	Page(ctx context.Context, page, pageSize int) (*types.PaginatedResponse[T], error)

	// Save inserts a new entity and returns its assigned identifier.
	Save(ctx context.Context, model *T) (uuid.UUID, error)

	// Update merges the non-default fields of model onto the stored entity.
	Update(ctx context.Context, model *T) (*T, error)

	// Delete soft-deletes an entity by its identifier.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// History returns the audit records of an entity, most recent first.
	History(ctx context.Context, id uuid.UUID) ([]*entity.ObjectVersion, error)

	// TableColumns returns the stored column snapshot of the entity table.
	TableColumns(ctx context.Context, tableName ...string) (*entity.TableColumns, error)

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery
}

var (
	versionsMu    sync.Mutex
	versionsDB    *bun.DB
	versionsStore versioning.Store
)

// Versions returns the audit store bound to the global database.
func Versions() versioning.Store {
	db := database.GetDB()
	versionsMu.Lock()
	defer versionsMu.Unlock()
	if versionsStore == nil || versionsDB != db {
		versionsDB, versionsStore = db, versioning.NewStore(db)
	}
	return versionsStore
}

type baseServiceImpl[T any, PT entity.Record[T]] struct {
	repo *repository.BaseRepository[T, PT]
	once sync.Once
}

// NewService returns a Service over the global database connection and
// audit store. The repository is bound on first use.
func NewService[T any, PT entity.Record[T]]() Service[T] {
	return &baseServiceImpl[T, PT]{}
}

func (s *baseServiceImpl[T, PT]) baseRepo() *repository.BaseRepository[T, PT] {
	s.once.Do(func() { s.repo = repository.New[T, PT](database.GetDB(), Versions()) })
	return s.repo
}

func (s *baseServiceImpl[T, PT]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.baseRepo().GetByID(ctx, id)
}

func (s *baseServiceImpl[T, PT]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T, PT]) Active(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAllActive(ctx)
}

func (s *baseServiceImpl[T, PT]) Search(ctx context.Context, request *types.SearchParameterRequest) (*types.PaginatedResponse[T], error) {
	return s.baseRepo().Search(ctx, request)
}

func (s *baseServiceImpl[T, PT]) Page(ctx context.Context, page, pageSize int) (*types.PaginatedResponse[T], error) {
	return s.baseRepo().GetPaginated(ctx, page, pageSize)
}

func (s *baseServiceImpl[T, PT]) Save(ctx context.Context, model *T) (uuid.UUID, error) {
	return s.baseRepo().Add(ctx, model)
}

func (s *baseServiceImpl[T, PT]) Update(ctx context.Context, model *T) (*T, error) {
	return s.baseRepo().Update(ctx, model)
}

func (s *baseServiceImpl[T, PT]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[T, PT]) History(ctx context.Context, id uuid.UUID) ([]*entity.ObjectVersion, error) {
	return s.baseRepo().History(ctx, id)
}

func (s *baseServiceImpl[T, PT]) TableColumns(ctx context.Context, tableName ...string) (*entity.TableColumns, error) {
	return s.baseRepo().GetTableColumns(ctx, tableName...)
}

func (s *baseServiceImpl[T, PT]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}
