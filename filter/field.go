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

package filter

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/guregu/null/v5"
	"github.com/uptrace/bun"
)

// Kind is the comparable type family of a record field.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	}
	return "other"
}

// Numeric reports whether the column holds numbers natively.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Field is a resolved reference to a record column.
type Field struct {
	GoName string
	Column string
	Kind   Kind
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	baseModelType  = reflect.TypeOf(bun.BaseModel{})
	nullStringType = reflect.TypeOf(null.String{})
	nullIntType    = reflect.TypeOf(null.Int{})
	nullFloatType  = reflect.TypeOf(null.Float{})
	nullBoolType   = reflect.TypeOf(null.Bool{})
	nullTimeType   = reflect.TypeOf(null.Time{})

	fieldCache sync.Map // reflect.Type -> []Field
)

// ResolveField finds a field of typ by Go name or column name, ignoring case.
func ResolveField(typ reflect.Type, name string) (Field, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Field{}, false
	}
	for _, f := range Fields(typ) {
		if strings.EqualFold(f.GoName, name) || strings.EqualFold(f.Column, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Fields lists the column-backed fields of typ, embedded structs flattened.
func Fields(typ reflect.Type) []Field {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if cached, ok := fieldCache.Load(typ); ok {
		return cached.([]Field)
	}
	var fields []Field
	if typ.Kind() == reflect.Struct {
		fields = collectFields(typ, nil)
	}
	actual, _ := fieldCache.LoadOrStore(typ, fields)
	return actual.([]Field)
}

func collectFields(typ reflect.Type, fields []Field) []Field {
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.Type == baseModelType {
			continue
		}
		tag := sf.Tag.Get("bun")
		if tag == "-" {
			continue
		}
		column, _, _ := strings.Cut(tag, ",")
		ft := sf.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if sf.Anonymous && column == "" && ft.Kind() == reflect.Struct && kindOf(ft) == KindOther {
			fields = collectFields(ft, fields)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if column == "" {
			column = underscore(sf.Name)
		}
		fields = append(fields, Field{GoName: sf.Name, Column: column, Kind: kindOf(ft)})
	}
	return fields
}

func kindOf(t reflect.Type) Kind {
	switch t {
	case timeType, nullTimeType:
		return KindTime
	case nullStringType:
		return KindString
	case nullIntType:
		return KindInt
	case nullFloatType:
		return KindFloat
	case nullBoolType:
		return KindBool
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Bool:
		return KindBool
	}
	return KindOther
}

// underscore converts a Go field name to the column name bun derives for it.
func underscore(s string) string {
	b := make([]byte, 0, len(s)+5)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUpper(c) {
			if i > 0 && i+1 < len(s) && (isLower(s[i-1]) || isLower(s[i+1])) {
				b = append(b, '_', c+32)
			} else {
				b = append(b, c+32)
			}
		} else {
			b = append(b, c)
		}
	}
	return string(b)
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
