// Package session is the Redis adapter behind authkit's revocation store:
// refresh-session records keyed by (client, user, jti), one single-slot
// session per bot, and the access-token blacklist. Multi-step operations
// (single-slot replacement, compare-and-delete) run as Lua scripts so they
// are atomic in a single round trip.
package session
