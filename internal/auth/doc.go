// Package auth owns the CoinPost login protocol and the error taxonomy the
// HTTP surface maps onto status codes.
//
// It ties together anti-forgery material generation, the provider capability
// contract, identity resolution, and session issuance, so handlers only deal
// in cookies and redirects.
//
// Subpackages:
//   - pkce: state and code-verifier generation
//   - coinpost: the CoinPost provider client
//   - session: durable session lifecycle
package auth
