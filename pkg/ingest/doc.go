/*
Package ingest normalizes raw wire records at the fetch boundary.

The ingest package is the single place where Herald copes with the server of
record's historical field-name inconsistency. The same semantic field arrives
under two names depending on the age of the record: a camelCase variant
(isRead, readBy, targetUserIds, scheduledAt) and a snake_case variant
(is_read, read_by, target_user_ids, scheduled_at). RawNotification declares
both; Normalize collapses them into exactly one canonical
types.Notification so no downstream component ever branches on naming
variants again.

# Architecture

	┌──────────────────── INGESTION BOUNDARY ──────────────────┐
	│                                                           │
	│   fetchNotifications result (JSON)                        │
	│        │                                                  │
	│        ▼                                                  │
	│   RawNotification          both field-name variants       │
	│        │                                                  │
	│        ▼                                                  │
	│   Normalize(raw, recipient)                               │
	│     - first-non-empty merge of scalar variants            │
	│     - union merge of read-by list variants                │
	│     - identifier canonicalization (number → string)       │
	│     - timestamp parsing (unparsable → released)           │
	│     - type/status defaulting (info / active)              │
	│        │                                                  │
	│        ▼                                                  │
	│   types.Notification       canonical, variant-free        │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Read-State Normalization

ReadState derives the per-recipient read state:

  - IsRead is true when any variant of the boolean read flag is set, or when
    the recipient's canonical identifier appears in either read-by list.
  - The canonical read-by set merges both list variants, deduplicated in
    order of first appearance.
  - A record read with no list defaults to [recipient.ID].

Normalization is a pure derivation. The raw record is never mutated and
nothing is written back to the source of truth.

# Identifier Handling

Identifiers arrive as JSON strings or JSON numbers depending on record age.
The ID type decodes both to the same canonical string, so a recipient "42"
matches a target list carrying the number 42.
*/
package ingest
