// Package authsdk is the client SDK for the identity service. Gateways and
// sibling services use it to log users in, verify presented access tokens,
// refresh token pairs, and log sessions out, without hand-rolling HTTP calls.
//
// The identity service's own HTTP handlers share this package's response and
// error types, so the wire contract is defined in exactly one place.
package authsdk
