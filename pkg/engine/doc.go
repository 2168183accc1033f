/*
Package engine implements the per-session notification sync engine.

One Engine exists per active recipient session. It owns that session's local
cache (visible notification list and unread count), keeps it reconciled with
the server of record by polling, and applies mutations optimistically before
server confirmation.

# Architecture

	┌──────────────────── SYNC ENGINE ─────────────────────────┐
	│                                                           │
	│  Poll loop (one immediate cycle, then fixed interval)     │
	│        │                                                  │
	│        ▼                                                  │
	│  Re-entrancy guard ── overlapping refresh? drop it        │
	│        │                                                  │
	│        ▼                                                  │
	│  Concurrent fetches (fail open independently)             │
	│    unread count  → 0 on error                             │
	│    record list   → empty on error                         │
	│        │                                                  │
	│        ▼                                                  │
	│  Per-record pipeline                                      │
	│    ingest.Normalize     variants → canonical              │
	│    delivery.Released    drafts/scheduled dropped          │
	│    targeting.Resolve    user > role > audience            │
	│    targeting.Suppressed author's own broadcasts hidden    │
	│        │                                                  │
	│        ▼                                                  │
	│  Cache replaced wholesale, source order preserved         │
	│  Unread recomputed (self-authored never counted)          │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# State Machine

Idle → Fetching → Idle. A refresh invoked while one is in flight returns
immediately; there is no queueing and no cancellation of the in-flight cycle.
All cache mutation happens under one mutex, and reads serve the last-known-good
snapshot while a refresh runs.

# Mutations

Every mutation is optimistic with no rollback: the local state changes first,
the server is told second, and a failed call is logged and left for the next
poll to reconcile. A silent flicker back to unread would be worse for the
recipient than a drift window bounded by the poll interval.

MarkAllRead captures the unread non-self subset before mutating. When the
bulk endpoint fails (transport error or explicit logical failure), the engine
falls back to per-item marks for the captured subset, oldest first, bounded
by the configured batch size, dispatched concurrently, with individual
failures never aborting the rest.

ClearAll is defined as "mark everything read and hide it locally"; it is not
a deletion.

# Session Lifecycle

Start launches the poll loop; Stop cancels the timer, discards the cache and
causes any refresh still in flight to throw away its results. After Stop the
engine does no further background work, so ending a session never leaks a
ticker.
*/
package engine
