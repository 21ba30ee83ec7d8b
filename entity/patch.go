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

package entity

import (
	"time"

	"github.com/guregu/null/v5"
)

// The Patch helpers implement the sparse update contract: a source value
// replaces the destination unless it is the default for its type.

// Patch copies src into dst unless src is the zero value.
// Covers strings, numbers, bools, UUIDs and comparable enums.
func Patch[V comparable](dst *V, src V) {
	var zero V
	if src != zero {
		*dst = src
	}
}

// PatchTime copies src unless it is the zero time.
func PatchTime(dst *time.Time, src time.Time) {
	if !src.IsZero() {
		*dst = src
	}
}

// PatchTimePtr copies src unless it is nil or points at the zero time.
func PatchTimePtr(dst **time.Time, src *time.Time) {
	if src != nil && !src.IsZero() {
		t := *src
		*dst = &t
	}
}

// PatchPtr copies src unless it is nil.
func PatchPtr[V any](dst **V, src *V) {
	if src != nil {
		*dst = src
	}
}

// PatchSlice copies src unless it is nil or empty.
func PatchSlice[E any](dst *[]E, src []E) {
	if len(src) > 0 {
		*dst = src
	}
}

// PatchMap copies src unless it is nil or empty.
func PatchMap[K comparable, V any](dst *map[K]V, src map[K]V) {
	if len(src) > 0 {
		*dst = src
	}
}

// PatchNullString copies src unless it is null or empty. An empty string
// counts as default for nullable strings just as for plain ones.
func PatchNullString(dst *null.String, src null.String) {
	if src.Valid && src.String != "" {
		*dst = src
	}
}
