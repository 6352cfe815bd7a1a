/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"dirpx.dev/rtti/apis"
)

const (
	// DefaultPrimitives represents the default for Primitives.
	// When true, the builtin primitive set is registered eagerly.
	DefaultPrimitives = true
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultAllowOverwrite represents the default for AllowOverwrite.
	// Duplicate registration is an error unless explicitly allowed.
	DefaultAllowOverwrite = false
	// DefaultTrackObjects represents the default for TrackObjects.
	DefaultTrackObjects = false
	// DefaultSequenceFormat represents the default for SequenceFormat.
	DefaultSequenceFormat = "sequence<%s>"
)

// ErrInvalidConfig is returned when a configuration document cannot be applied.
var ErrInvalidConfig = errors.New("rtti(config): invalid configuration")

// decodeError matches ErrInvalidConfig and keeps the decoder error as cause.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return ErrInvalidConfig.Error() + ": " + e.err.Error() }
func (e *decodeError) Cause() error { return e.err }
func (e *decodeError) Unwrap() error { return e.err }
func (e *decodeError) Is(target error) bool { return target == ErrInvalidConfig }

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxUnwrap is valid.
	if cfg.MaxUnwrap < 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	if cfg.SequenceFormat == "" {
		cfg.SequenceFormat = DefaultSequenceFormat
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Primitives:     DefaultPrimitives,
		MaxUnwrap:      DefaultMaxUnwrap,
		AllowOverwrite: DefaultAllowOverwrite,
		TrackObjects:   DefaultTrackObjects,
		SequenceFormat: DefaultSequenceFormat,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithPrimitives sets the Primitives option.
func WithPrimitives(eager bool) Option {
	return func(c *apis.Config) {
		c.Primitives = eager
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A negative value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max < 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithAllowOverwrite sets the AllowOverwrite option.
func WithAllowOverwrite(allow bool) Option {
	return func(c *apis.Config) {
		c.AllowOverwrite = allow
	}
}

// WithTrackObjects sets the TrackObjects option.
func WithTrackObjects(track bool) Option {
	return func(c *apis.Config) {
		c.TrackObjects = track
	}
}

// WithSequenceFormat sets the SequenceFormat option.
// An empty format resets to the default.
func WithSequenceFormat(format string) Option {
	return func(c *apis.Config) {
		if format == "" {
			c.SequenceFormat = DefaultSequenceFormat
			return
		}
		c.SequenceFormat = format
	}
}

// file is the on-disk form of a configuration. Absent keys keep defaults.
type file struct {
	Primitives     *bool   `yaml:"primitives"`
	MaxUnwrap      *int    `yaml:"max_unwrap"`
	AllowOverwrite *bool   `yaml:"allow_overwrite"`
	TrackObjects   *bool   `yaml:"track_objects"`
	SequenceFormat *string `yaml:"sequence_format"`
}

// Parse decodes a YAML document into options that can be passed to
// NewConfig. Unknown keys are rejected.
func Parse(data []byte) ([]Option, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.WithStack(&decodeError{err: err})
	}

	var opts []Option
	if f.Primitives != nil {
		opts = append(opts, WithPrimitives(*f.Primitives))
	}
	if f.MaxUnwrap != nil {
		if *f.MaxUnwrap < 0 {
			return nil, errors.Wrapf(ErrInvalidConfig, "max_unwrap must not be negative, got %d", *f.MaxUnwrap)
		}
		opts = append(opts, WithMaxUnwrap(*f.MaxUnwrap))
	}
	if f.AllowOverwrite != nil {
		opts = append(opts, WithAllowOverwrite(*f.AllowOverwrite))
	}
	if f.TrackObjects != nil {
		opts = append(opts, WithTrackObjects(*f.TrackObjects))
	}
	if f.SequenceFormat != nil {
		if !strings.Contains(*f.SequenceFormat, "%s") {
			return nil, errors.Wrapf(ErrInvalidConfig, "sequence_format %q has no %%s verb", *f.SequenceFormat)
		}
		opts = append(opts, WithSequenceFormat(*f.SequenceFormat))
	}
	return opts, nil
}

// Load reads a YAML configuration file and returns the resulting config.
func Load(path string) (apis.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return apis.Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	opts, err := Parse(data)
	if err != nil {
		return apis.Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	return NewConfig(opts...), nil
}
