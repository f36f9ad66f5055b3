// Package ociregistry implements publisher.Registry for OCI registries.
//
// Each extension version is pushed as an OCI 1.1 artifact with a single VSIX
// layer:
//
//	{registry}/{repository}/{publisher}.{name}:{version}
//
// Versions with build metadata are tagged with "_" in place of "+". Without
// an explicit credential the Docker credential store is used.
//
// Pull a published pack with ORAS:
//
//	oras pull ghcr.io/acme/extensions/acme.vscode-python-pack:1.0.0
package ociregistry
