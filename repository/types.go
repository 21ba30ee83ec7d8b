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
	"context"

	"github.com/google/uuid"
	"github.com/tomoncle/keeper/entity"
	"github.com/tomoncle/keeper/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines the audited CRUD operations for an entity type.
type CrudRepository[T any] interface {
	GetAll(ctx context.Context) ([]*T, error)

	GetAllActive(ctx context.Context) ([]*T, error)

	GetByID(ctx context.Context, id uuid.UUID) (*T, error)

	Add(ctx context.Context, entity *T) (uuid.UUID, error)

	Update(ctx context.Context, entity *T) (*T, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// PageQueryRepository defines filtered and unfiltered pagination.
type PageQueryRepository[T any] interface {
	Search(ctx context.Context, request *types.SearchParameterRequest) (*types.PaginatedResponse[T], error)
	GetPaginated(ctx context.Context, page, pageSize int) (*types.PaginatedResponse[T], error)
}

// MetadataRepository exposes the column snapshot and audit history of the
// entity type.
type MetadataRepository interface {
	GetTableColumns(ctx context.Context, tableName ...string) (*entity.TableColumns, error)
	History(ctx context.Context, id uuid.UUID) ([]*entity.ObjectVersion, error)
}

// Repository combines CRUD, search and metadata operations and exposes Bun
// query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	MetadataRepository
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
}
