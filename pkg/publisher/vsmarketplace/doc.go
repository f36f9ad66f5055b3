// Package vsmarketplace implements publisher.Registry for the Visual Studio
// Marketplace.
//
// The marketplace has no public versioned lookup, so version checks fetch the
// item page and match the version in its markup. The check is best effort.
// Uploads use the gallery REST API with a personal access token.
package vsmarketplace
