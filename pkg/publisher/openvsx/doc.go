// Package openvsx implements publisher.Registry for Open VSX servers.
//
// Version checks use the versioned extension API
// (GET /api/{namespace}/{name}/{version}); uploads POST the archive to
// /api/-/publish with the access token.
package openvsx
