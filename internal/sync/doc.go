// Package sync reconciles the skills directory with the upstream sources
// declared in the manifest.
//
// For every source, in manifest order, the engine resolves the revision the
// source's ref currently points to, reads the provenance sidecar of each
// declared skill and classifies it as current or stale. Stale skill
// directories are deleted and re-fetched through the source's transport,
// and a fresh provenance record is written for every directory the
// transport populated. After a mutating pass the third-party license file
// is regenerated.
//
// The skills directory is treated as build output owned by this package:
// local edits to a stale skill are discarded without confirmation.
//
// Failures are fatal to the run. The first resolution, transport,
// provenance or license error aborts the pass; sources completed before the
// failure keep their new content and provenance.
package sync
