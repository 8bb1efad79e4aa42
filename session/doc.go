// Package session implements the two-tier session store: an in-memory map of
// live sessions and conversation histories backed by a pluggable durable
// blob store (see core.BlobStore).
//
// Profile and history are persisted as two independent durable records per
// user so that a profile-only or history-only restore is possible and a
// missing one does not block the other. Durable writes are synchronous; an
// operation does not return until the write completed or failed.
//
// Concurrent requests for different users proceed independently; requests
// for the same user are serialized by a per-user lock so the append-only
// history stays monotonic.
package session
