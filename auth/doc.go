// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth handles token generation and admin credential checks.

# Session Tokens

GenerateSessionToken creates a 192-bit random token, URL-safe base64
encoded without padding:

	token, err := auth.GenerateSessionToken()

The token is delivered as an HttpOnly cookie and is the only key to the
server-side session state.

# Identifiers

NewParticipantID returns an 8-character anonymous participant ID;
NewRunID returns the UUID shared by all rows of one run:

	pid := auth.NewParticipantID() // e.g. "3f2a9c1b"
	rid := auth.NewRunID()         // full UUID

# Admin Credentials

CheckCredentials compares a submitted username/password pair against the
configured values in constant time (both sides are SHA-256 hashed before
hmac.Equal, so timing does not leak credential length):

	if err := auth.CheckCredentials(user, pass, cfg.AdminUser, cfg.AdminPass); err != nil {
		// 401
	}
*/
package auth
