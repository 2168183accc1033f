/*
Package identity supplies recipient identities and session liveness.

A Provider answers two questions for the rest of Herald: who is the current
recipient (id + role) and is the session still alive. The sync engine and
facade never authenticate anyone themselves; they consume whatever identity
the provider hands them.

Two providers are included. Session is the explicit kind: constructed from a
known recipient and ended by calling End (a logout hook, typically).
SessionFromToken validates an HS256 JWT whose claims carry recipient_id and
role, and ends itself when the token expires, so an expired login stops its
polling without any extra wiring. A missing role claim defaults to the
regular user role rather than failing the session.
*/
package identity
