// Package versionstore persists the released version of every extension pack.
//
// The store is a JSON object keyed by ide, then language:
//
//	{
//	  "vscode": {"python": "1.4.0", "go": "1.0.2"},
//	  "cursor": {"python": "1.1.0"}
//	}
//
// The builder never bumps versions; it carries over whatever version the
// generated package.json holds. Release tooling bumps a version here and
// calls Sync to write it into the manifest before the next build:
//
//	s, _ := versionstore.Open("versions.json")
//	next, _ := s.Bump("vscode", "python", version.PartMinor, "1.0.0")
//	_, _ = s.Sync("vscode", "python", "packages/vscode/python")
//	_ = s.Save()
package versionstore
