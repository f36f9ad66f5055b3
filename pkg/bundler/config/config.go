// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/extpack/extpack/pkg/defaults"
	"github.com/extpack/extpack/pkg/version"
)

// Config holds the settings shared by every build a Builder performs.
// It is immutable after creation and safe for concurrent use.
type Config struct {
	// outputDir is the root of generated package directories.
	outputDir string

	// distDir is the root of packaged artifacts.
	distDir string

	// assetsDir is the root searched for icon assets.
	assetsDir string

	// organization is the copyright holder named in generated licenses.
	organization string

	// publisher is the registry publisher identifier written to manifests.
	publisher string

	// repositoryURL is the source repository written to manifests.
	repositoryURL string

	// license is the license declared by generated packs.
	license string

	// engineRange is the minimum editor engine declared by generated packs.
	engineRange string

	// floorVersion is used when no previous manifest version is readable.
	floorVersion string

	// includeChecksums writes a .sha256 file next to each packaged artifact.
	includeChecksums bool

	// clock supplies the generation date.
	clock func() time.Time

	// version is the tool version recorded in build metadata.
	version string
}

// Getter methods for read-only access

// OutputDir returns the root of generated package directories.
func (c *Config) OutputDir() string {
	return c.outputDir
}

// DistDir returns the root of packaged artifacts.
func (c *Config) DistDir() string {
	return c.distDir
}

// AssetsDir returns the root searched for icon assets.
func (c *Config) AssetsDir() string {
	return c.assetsDir
}

// Organization returns the copyright holder.
func (c *Config) Organization() string {
	return c.organization
}

// Publisher returns the registry publisher identifier.
func (c *Config) Publisher() string {
	return c.publisher
}

// RepositoryURL returns the source repository URL.
func (c *Config) RepositoryURL() string {
	return c.repositoryURL
}

// License returns the pack license.
func (c *Config) License() string {
	return c.license
}

// EngineRange returns the declared editor engine range.
func (c *Config) EngineRange() string {
	return c.engineRange
}

// FloorVersion returns the version used when none can be recovered.
func (c *Config) FloorVersion() string {
	return c.floorVersion
}

// IncludeChecksums returns whether artifact checksums are written.
func (c *Config) IncludeChecksums() bool {
	return c.includeChecksums
}

// Now returns the current time from the configured clock.
func (c *Config) Now() time.Time {
	return c.clock()
}

// Version returns the tool version.
func (c *Config) Version() string {
	return c.version
}

// Validate checks if the Config has valid settings.
func (c *Config) Validate() error {
	if c.outputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.distDir == "" {
		return fmt.Errorf("dist directory cannot be empty")
	}
	if c.publisher == "" {
		return fmt.Errorf("publisher cannot be empty")
	}
	if _, err := version.ParseVersion(c.floorVersion); err != nil {
		return fmt.Errorf("invalid floor version %q: %w", c.floorVersion, err)
	}
	if c.repositoryURL != "" {
		u, err := url.Parse(c.repositoryURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("repository URL %q must be absolute", c.repositoryURL)
		}
	}
	return nil
}

type Option func(*Config)

// WithOutputDir sets the root of generated package directories.
func WithOutputDir(dir string) Option {
	return func(c *Config) {
		c.outputDir = dir
	}
}

// WithDistDir sets the root of packaged artifacts.
func WithDistDir(dir string) Option {
	return func(c *Config) {
		c.distDir = dir
	}
}

// WithAssetsDir sets the root searched for icon assets.
func WithAssetsDir(dir string) Option {
	return func(c *Config) {
		c.assetsDir = dir
	}
}

// WithOrganization sets the copyright holder.
func WithOrganization(org string) Option {
	return func(c *Config) {
		c.organization = org
	}
}

// WithPublisher sets the registry publisher identifier.
func WithPublisher(publisher string) Option {
	return func(c *Config) {
		c.publisher = publisher
	}
}

// WithRepositoryURL sets the source repository URL.
func WithRepositoryURL(u string) Option {
	return func(c *Config) {
		c.repositoryURL = u
	}
}

// WithLicense sets the pack license.
func WithLicense(license string) Option {
	return func(c *Config) {
		c.license = license
	}
}

// WithEngineRange sets the declared editor engine range.
func WithEngineRange(r string) Option {
	return func(c *Config) {
		c.engineRange = r
	}
}

// WithFloorVersion sets the version used when none can be recovered.
func WithFloorVersion(v string) Option {
	return func(c *Config) {
		c.floorVersion = v
	}
}

// WithIncludeChecksums sets whether artifact checksums are written.
func WithIncludeChecksums(enabled bool) Option {
	return func(c *Config) {
		c.includeChecksums = enabled
	}
}

// WithClock overrides the time source used for generation dates.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithVersion sets the tool version.
func WithVersion(v string) Option {
	return func(c *Config) {
		c.version = v
	}
}

// NewConfig returns a Config with default values.
func NewConfig(options ...Option) *Config {
	c := &Config{
		outputDir:        defaults.OutputDir,
		distDir:          defaults.DistDir,
		assetsDir:        defaults.AssetsDir,
		organization:     "extpack",
		publisher:        "extpack",
		license:          defaults.PackLicense,
		engineRange:      defaults.EngineRange,
		floorVersion:     defaults.FloorVersion,
		includeChecksums: true,
		clock:            time.Now,
		version:          "dev",
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
