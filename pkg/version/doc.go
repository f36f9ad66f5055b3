// Package version parses and manipulates the semantic versions carried in
// extension manifests.
//
// Versions are strict MAJOR.MINOR.PATCH triples with optional pre-release and
// build suffixes:
//
//	v, err := version.ParseVersion("1.4.2")
//	next, _ := v.Bump(version.PartMinor) // 1.5.0
package version
