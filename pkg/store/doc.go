/*
Package store is the bbolt-backed reference server of record.

Herald's engine only ever sees the service.Service contract; this package is
one implementation of it, used by the reference HTTP server and by tests. A
single bucket holds notification records as JSON values keyed by ID, in the
legacy snake_case wire shape, which exercises the client-side ingestion
normalizer end to end.

	┌──────────────────── STORAGE LAYOUT ──────────────────────┐
	│                                                           │
	│  herald.db (bbolt)                                        │
	│  └── notifications/                                       │
	│        <id> → {"id": ..., "title": ..., "status": ...,    │
	│                "scheduled_at": ..., "read_by": [...]}     │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

Read-by sets are monotonic: MarkRead and MarkAllRead only add recipients,
and the set disappears only when the record itself is deleted. MarkAllRead
skips unreleased records so a recipient cannot pre-acknowledge a draft or a
scheduled notification they have never seen.

The server-side unread count ignores targeting (it has no role information
for arbitrary recipients); it is a hint that the client recomputes against
its resolved visible set, per the sync engine's contract.
*/
package store
