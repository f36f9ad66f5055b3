// Package cli implements the command-line interface for the extpack tool.
//
// # Overview
//
// extpack turns curated collection files, one per (ide, language) pair, into
// installable extension packs and publishes the packaged archives to
// extension registries.
//
// # Commands
//
// build - Generate extension packs:
//
//	extpack build --ide vscode --language python [--package]
//	extpack build --all [--ide cursor] [--parallel 4]
//
// Renders pack sources under --out-dir and, with --package, archives them
// into {dist-dir}/{ide}/{ide}-{language}-{version}.vsix.
//
// list - List available collections and their current pack versions:
//
//	extpack list [--ide vscode]
//
// validate - Check collections against the collection schema:
//
//	extpack validate [--ide vscode --language python]
//
// publish - Upload a packaged archive to one registry:
//
//	extpack publish --registry openvsx --artifact dist/vscode/vscode-python-1.0.0.vsix
//
// version - Manage stored pack versions:
//
//	extpack version list
//	extpack version bump --ide vscode --language python --part minor
//	extpack version set --ide vscode --language python --to 2.0.0
//	extpack version sync
//
// # Output Formats
//
// Commands that produce a result accept --format (table, json, yaml) and
// --output (default: stdout).
//
// # Environment Variables
//
//	LOG_LEVEL                Logging verbosity (debug, info, warn, error)
//	EXTPACK_CONFIG_ROOT      Collection root (default: collections)
//	EXTPACK_OUTPUT           Generated sources root (default: packages)
//	EXTPACK_DIST             Packaged archives root (default: dist)
//	EXTPACK_ASSETS           Icon assets root (default: assets)
//	EXTPACK_TEMPLATES        Directory of template overrides (*.tmpl)
//	EXTPACK_PUBLISHER        Publisher written to manifests
//	EXTPACK_ORGANIZATION     Copyright holder in generated licenses
//	EXTPACK_REPOSITORY_URL   Repository URL written to manifests
//	EXTPACK_OCI_TARGET       OCI repository root for --registry oci
//	VSCE_PAT                 Visual Studio Marketplace token
//	OVSX_PAT                 Open VSX token
//	OCI_CREDENTIAL           OCI registry credential (user:password or token)
//
// Variables may also be set in a .env file in the working directory.
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, build or publish failure)
//	2  Context canceled or timeout
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/extpack/extpack/pkg/cli.version=1.0.0'"
package cli
