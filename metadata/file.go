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

package metadata

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/tomoncle/keeper/entity"
	"gopkg.in/yaml.v3"
)

type descriptorFile struct {
	Tables []tableDescriptor `yaml:"tables"`
}

type tableDescriptor struct {
	TableName string               `yaml:"table_name"`
	Columns   []entity.TableColumn `yaml:"columns"`
}

// LoadFile reads the table descriptors of a YAML file.
func LoadFile(path string) ([]*entity.TableColumns, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read table descriptors %s", path)
	}
	tables, err := Decode(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return tables, nil
}

// Decode parses YAML of the form:
//
//	tables:
//	  - table_name: widget
//	    columns:
//	      - {name: id, type: uniqueidentifier, order: 1}
func Decode(r io.Reader) ([]*entity.TableColumns, error) {
	var file descriptorFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode table descriptors")
	}

	tables := make([]*entity.TableColumns, 0, len(file.Tables))
	seen := make(map[string]struct{}, len(file.Tables))
	for i, t := range file.Tables {
		if t.TableName == "" {
			return nil, errors.Newf("table descriptor %d has no table_name", i)
		}
		if _, dup := seen[t.TableName]; dup {
			return nil, errors.Newf("table %q is described twice", t.TableName)
		}
		seen[t.TableName] = struct{}{}
		tables = append(tables, entity.NewTableColumns(t.TableName, t.Columns))
	}
	return tables, nil
}

// Encode writes tables in the format read by Decode.
func Encode(w io.Writer, tables ...*entity.TableColumns) error {
	file := descriptorFile{Tables: make([]tableDescriptor, 0, len(tables))}
	for _, t := range tables {
		file.Tables = append(file.Tables, tableDescriptor{TableName: t.TableName, Columns: t.List()})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return errors.Wrap(err, "encode table descriptors")
	}
	return enc.Close()
}
