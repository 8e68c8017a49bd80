// Package authkit is the token lifecycle and session-integrity core of an
// authentication service: it issues, verifies, rotates, and revokes signed
// access/refresh token pairs, binds each token to a CSRF token by jti,
// keeps refresh sessions in a Redis revocation store, and runs the
// time-based one-time-code flow for password resets.
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator interfaces ([UserProvider], [EventBus]), and the value
// types flows return. The cryptographic and storage leaves live in the
// jwt, csrf, session, and otp subpackages.
//
// The HTTP layer, user-record storage, password hashing, and email
// delivery are collaborators, not residents: authkit consumes a
// [UserProvider], publishes typed events on an [EventBus], and defines the
// payloads and policies a transport layer must enforce — it never routes a
// request or sends an email itself.
//
// # Failure posture
//
// Every flow fails closed. Rotation is single-use: the winning refresh
// deletes the old session atomically before the new pair exists, so a
// replayed token answers ErrSessionRevoked. Store outages are
// session.ErrStoreUnavailable, a retryable condition that is never
// collapsed into an authorization answer.
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build].
package authkit
