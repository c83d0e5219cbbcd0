// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies caller identities and generates random IDs.

# Caller Identity

User authentication happens outside this service. The authentication layer
forwards the caller's identity in the X-Identity header together with an
HMAC-SHA256 signature in X-Identity-Signature:

	sig := auth.SignIdentity(identity, salt)
	err := auth.VerifyIdentity(identity, sig, salt)

The signature is URL-safe base64 encoded without padding. Since it's
deterministic, the service validates it without storing anything. Both sides
share the salt (IDENTITY_SALT).

# ID Generation

Random hex IDs, used for request IDs:

	id, err := auth.GenerateID(8)  // 16 hex characters
*/
package auth
