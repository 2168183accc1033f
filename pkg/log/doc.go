/*
Package log provides structured logging for Herald using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper functions
for common logging patterns. All logs include timestamps and support filtering
by severity level.

# Architecture

Herald's logging system provides structured logging with minimal overhead:

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("engine")                  │          │
	│  │  - WithRecipientID("user-42")               │          │
	│  │  - WithNotificationID("notif-abc123")       │          │
	│  └────────────────────────────────────────────┘          │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Usage

Initialize once at process start:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

Create component loggers for subsystems:

	logger := log.WithComponent("engine")
	logger.Info().Str("recipient_id", "user-42").Msg("session started")

Log errors with context:

	logger.Warn().Err(err).Msg("unread count fetch failed, using 0")

# Design Notes

Every failure in Herald's sync path is logged and tolerated rather than
propagated, so log output is the primary signal for drift between the local
cache and the server of record. Warn level marks degraded cycles (a fetch
substituted with a safe default); error level is reserved for conditions that
leave the local view stale until the next poll.

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - 12-Factor App Logs: https://12factor.net/logs
*/
package log
