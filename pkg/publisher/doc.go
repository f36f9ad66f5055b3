// Package publisher uploads packaged extension packs to extension registries.
//
// A Publisher holds one Registry per registry type and publishes a single
// artifact to a single registry per call. Publishing to every registry at
// once ("all") is rejected so that a partial failure is never ambiguous.
//
// Usage:
//
//	p := publisher.New(
//	    publisher.WithRegistry(openvsx.New()),
//	    publisher.WithRegistry(vsmarketplace.New()),
//	)
//	res, err := p.Publish(ctx, publisher.Request{
//	    Credential:   os.Getenv("OVSX_PAT"),
//	    ArtifactPath: "dist/vscode/vscode-python-1.0.0.vsix",
//	    Registry:     openvsx.Type,
//	})
//
// The extension identity and version are read from the artifact's
// extension/package.json, never from the collection it was built from.
//
// # Idempotency
//
// Before uploading, the registry is asked whether the version exists. If it
// does, the upload is skipped and Result.IsUpdate is false. A failing check is
// logged and treated as "not published", so a flaky lookup never blocks a
// release.
//
// # Errors
//
// Upload failures are classified:
//
//   - UNAUTHORIZED: 401/403, with a hint naming the token page and scopes
//   - VERSION_CONFLICT: 409 or an "already exists" rejection
//   - NETWORK: DNS, dial, refused, or timeout failures, with a status page hint
//   - PUBLISH: anything else, keeping the registry's message
//
// # Registries
//
// Registry implementations live in subpackages: openvsx, vsmarketplace, and
// ociregistry. All outbound HTTP goes through NewHTTPClient, which paces
// requests with a token bucket limiter.
package publisher
