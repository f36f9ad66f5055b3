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

package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrComponentCount    = errors.New("version must have exactly 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrLeadingZero       = errors.New("version component has a leading zero")
	ErrInvalidExtras     = errors.New("version pre-release or build metadata is malformed")
	ErrUnknownBumpTarget = errors.New("bump target must be major, minor, or patch")
)

// Part names a version component that can be incremented.
type Part string

const (
	PartMajor Part = "major"
	PartMinor Part = "minor"
	PartPatch Part = "patch"
)

// Version is a semantic version as accepted in extension manifests:
// MAJOR.MINOR.PATCH with optional "-prerelease" and "+build" suffixes.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`

	// Extras holds the pre-release and build suffix verbatim, including the
	// leading '-' or '+'.
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// NewVersion creates a new Version with the specified major, minor, and patch values.
func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// String returns "Major.Minor.Patch" followed by any extras.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Extras)
}

// ParseVersion parses a strict semantic version string. A leading "v" is
// tolerated and stripped. Exactly three numeric components are required.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	s = strings.TrimPrefix(s, "v")
	var v Version

	mainPart := s
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		mainPart = s[:i]
		v.Extras = s[i:]
		if !validExtras(v.Extras) {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidExtras, v.Extras)
		}
	}

	parts := strings.Split(mainPart, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrComponentCount, s)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
			}
		}
		if len(part) > 1 && part[0] == '0' {
			return Version{}, fmt.Errorf("%w: %q", ErrLeadingZero, part)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		nums[i] = num
	}

	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	return v, nil
}

// IsValidString reports whether s parses as a semantic version.
func IsValidString(s string) bool {
	_, err := ParseVersion(s)
	return err == nil
}

// Bump returns the version with the given part incremented and lower parts
// reset. Extras are dropped.
func (v Version) Bump(part Part) (Version, error) {
	switch part {
	case PartMajor:
		return NewVersion(v.Major+1, 0, 0), nil
	case PartMinor:
		return NewVersion(v.Major, v.Minor+1, 0), nil
	case PartPatch:
		return NewVersion(v.Major, v.Minor, v.Patch+1), nil
	default:
		return Version{}, fmt.Errorf("%w: %q", ErrUnknownBumpTarget, part)
	}
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
// A version with a pre-release suffix sorts before the same release version.
// Build metadata is ignored.
func (v Version) Compare(other Version) int {
	for _, d := range [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		if d[0] < d[1] {
			return -1
		}
		if d[0] > d[1] {
			return 1
		}
	}
	vp, op := v.prerelease(), other.prerelease()
	switch {
	case vp == op:
		return 0
	case vp == "":
		return 1
	case op == "":
		return -1
	case vp < op:
		return -1
	default:
		return 1
	}
}

func (v Version) prerelease() string {
	if !strings.HasPrefix(v.Extras, "-") {
		return ""
	}
	pre := strings.TrimPrefix(v.Extras, "-")
	if i := strings.Index(pre, "+"); i >= 0 {
		pre = pre[:i]
	}
	return pre
}

func validExtras(extras string) bool {
	segs := strings.FieldsFunc(extras, func(r rune) bool { return r == '-' || r == '+' })
	if len(segs) == 0 {
		return false
	}
	for _, seg := range segs {
		for _, id := range strings.Split(seg, ".") {
			if id == "" {
				return false
			}
			for _, c := range id {
				if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
					return false
				}
			}
		}
	}
	return true
}
