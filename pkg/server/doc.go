/*
Package server is the reference server-of-record HTTP API.

The server exists so that Herald's engine has a real counterpart for its
service contracts: list, unread count, single and bulk acknowledgment, plus
a publish path for authors and the usual health and metrics endpoints. It
deliberately serves records in the legacy snake_case wire shape, which
exercises the client-side ingestion normalizer against live traffic.

# Endpoints

	GET    /health
	GET    /metrics                              Prometheus
	GET    /api/v1/notifications?limit=N         raw records, newest first
	GET    /api/v1/notifications/unread-count    {"count": n}
	POST   /api/v1/notifications                 publish (author = caller)
	PUT    /api/v1/notifications/:id/read        {"success": true}
	PUT    /api/v1/notifications/read-all        {"success": bool, "marked": n}
	DELETE /api/v1/notifications/:id

# Authentication

With server.authSecret configured, every /api/v1 request requires a bearer
token minted by pkg/identity; its claims decide the recipient. Without a
secret the server runs in development mode and trusts the X-Recipient-ID and
X-Recipient-Role headers.

# Division of Labor

The server does not resolve targeting and does not filter drafts out of list
responses; it hands out records as stored. Visibility is the client engine's
job, applied uniformly to every naming variant after ingestion. The one
exception is bulk acknowledgment, which skips unreleased records so a
recipient cannot pre-acknowledge notifications they have never seen.
*/
package server
