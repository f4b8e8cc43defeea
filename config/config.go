// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config specifies how an engine builds its nodes.
package config

import (
	"io"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"gopkg.in/yaml.v3"
)

// Config of an engine.
type Config struct {
	// DefaultInt is the data type of constants built from Go int literals.
	DefaultInt string `yaml:"default_int"`
	// DefaultFloat is the data type of constants built from Go float64 literals.
	DefaultFloat string `yaml:"default_float"`
}

var (
	intTypes = map[string]dtype.DataType{
		"int32":  dtype.Int32,
		"int64":  dtype.Int64,
		"uint32": dtype.Uint32,
		"uint64": dtype.Uint64,
	}
	floatTypes = map[string]dtype.DataType{
		"float32": dtype.Float32,
		"float64": dtype.Float64,
	}
)

// DTypeName returns the name of a data type supported by the configuration.
func DTypeName(dt dtype.DataType) string {
	if dt == dtype.Bool {
		return "bool"
	}
	for _, types := range []map[string]dtype.DataType{intTypes, floatTypes} {
		for name, candidate := range types {
			if candidate == dt {
				return name
			}
		}
	}
	return "invalid"
}

// Default returns the default configuration:
// 32-bit integers and 32-bit floats.
func Default() Config {
	return Config{
		DefaultInt:   "int32",
		DefaultFloat: "float32",
	}
}

// Load a configuration from YAML.
// Fields absent from the input keep their default values.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrapf(err, "cannot parse configuration")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns an error if a data type is not supported.
func (cfg Config) Validate() error {
	if _, err := cfg.IntType(); err != nil {
		return err
	}
	_, err := cfg.FloatType()
	return err
}

// IntType returns the default data type for integers.
func (cfg Config) IntType() (dtype.DataType, error) {
	dt, ok := intTypes[cfg.DefaultInt]
	if !ok {
		return dtype.Invalid, errors.Errorf("%q is not a valid default integer type", cfg.DefaultInt)
	}
	return dt, nil
}

// FloatType returns the default data type for floats.
func (cfg Config) FloatType() (dtype.DataType, error) {
	dt, ok := floatTypes[cfg.DefaultFloat]
	if !ok {
		return dtype.Invalid, errors.Errorf("%q is not a valid default float type", cfg.DefaultFloat)
	}
	return dt, nil
}
