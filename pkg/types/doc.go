/*
Package types defines the canonical data model shared across Herald.

The types package contains the core entities of the notification engine: the
Notification record as it exists after ingestion normalization, the Recipient
identity evaluating visibility, and the enumerations for notification type and
publication status. All other packages depend on types; types depends on
nothing but the standard library.

# Data Model

	┌──────────────────── DATA MODEL ──────────────────────────┐
	│                                                           │
	│  Notification (server-of-record entity)                   │
	│    ID, Title, Message         display fields              │
	│    Type                       info|success|warning|error  │
	│    Status                     draft|active                │
	│    ScheduledAt                delivery gate (zero = now)  │
	│    CreatedAt, CreatedBy       ordering + self-suppression │
	│    TargetUserIDs              highest-priority targeting  │
	│    TargetRoles                authoritative when set      │
	│    TargetAudience             legacy fallback ("all")     │
	│    ReadBy                     monotonic acknowledgment set│
	│    IsRead                     normalized per-recipient    │
	│                                                           │
	│  Recipient                                                │
	│    ID, Role                   identity from the session   │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Defaults

Parse helpers choose non-disruptive defaults for malformed input: an unknown
type becomes info, an unknown status becomes active. Ambiguity always favors
delivery over suppression.

# Invariants

  - ReadBy only grows; nothing in this engine removes acknowledgments.
  - Identifier comparison is by canonical string form everywhere.
  - IsRead is a per-session derivation, never written back to the server
    except through explicit mark-read operations.
*/
package types
