// Package jwt signs and verifies the access/refresh token pair used by
// authkit. Both token kinds share one RS256 key pair and are distinguished
// by a type claim; verification of one kind rejects the other. The package
// also signs HS256 email-confirmation tokens, which carry an action claim
// and are never accepted as API credentials.
package jwt
