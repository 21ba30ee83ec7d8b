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

package types

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// PageRequest describes a 1-indexed page window.
type PageRequest struct {
	page     int
	pageSize int
}

// NewPageRequest constructs a PageRequest. Values below 1 fall back to the
// defaults when read.
func NewPageRequest(page int, pageSize int) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize}
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = DefaultPageSize
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = DefaultPage
	}
	return p.page
}

// GetOffset returns the number of rows to skip: (page-1)*pageSize.
func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// PaginatedResponse holds one page of results along with pagination metadata.
// TotalCount is the size of the whole matching set, not of Data.
type PaginatedResponse[T any] struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	Data       []*T `json:"data"`
}

// NewPaginatedResponse constructs an empty page echoing the request window.
func NewPaginatedResponse[T any](page *PageRequest) *PaginatedResponse[T] {
	return &PaginatedResponse[T]{
		Page:     page.GetPage(),
		PageSize: page.GetPageSize(),
		Data:     make([]*T, 0),
	}
}

// TotalPages returns the number of pages needed for TotalCount.
func (p *PaginatedResponse[T]) TotalPages() int {
	if p.PageSize < 1 || p.TotalCount == 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}
