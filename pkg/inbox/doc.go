/*
Package inbox is the client facade over the sync engine.

Callers see five operations (list, unread count, mark-read, mark-all-read,
clear-all) plus session control (Start with an identity provider, Stop) and
an event subscription for badge updates. Everything delegates to the
per-session engine; the facade adds no business logic.

Start begins polling for the provider's recipient and watches the provider's
liveness signal, so a logout (Done channel closing) stops the poll timer
without the caller doing anything. Reads against a stopped or never-started
inbox return empty values rather than errors: a UI can always render.
*/
package inbox
