// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session provides the server-side session store.

# Model

A session is either a participant run or an admin login, keyed by a
random token delivered in an HttpOnly cookie. Run sessions hold the
participant ID, the version, the run ID, the shuffled stimulus order,
and the cursor; the order is fixed at run start and the cursor is
session-local state, advanced by one per accepted submission.

# Store

The store is an in-memory map with TTL expiry:

	store := session.NewStore(cfg.SessionTTL)
	token, sess, err := store.Create()
	sess, ok := store.Get(token) // slides expiry forward
	store.Delete(token)

A background purge drops expired sessions:

	store.StartPurge(done, time.Minute)

# Locking

Store methods are safe for concurrent use. Mutating a session's fields
(the cursor in particular) must happen under the session's own lock:

	sess.Lock()
	defer sess.Unlock()

# Cookies

SetCookie, ClearCookie, and TokenFromRequest handle the cookie plumbing
so handlers never touch cookie attributes directly.
*/
package session
