/*
Package metrics provides Prometheus instrumentation for Herald.

All collectors are package-level variables registered once in init, following
the standard client_golang pattern. The reference server mounts Handler() at
/metrics; embedded deployments can mount it on any mux.

# Metric Families

Sync engine:

	herald_refresh_cycles_total        counter    completed poll cycles
	herald_refresh_skipped_total       counter    cycles dropped by the guard
	herald_refresh_duration_seconds    histogram  cycle latency
	herald_visible_notifications       gauge      per-recipient visible set size
	herald_unread_notifications        gauge      per-recipient unread count

Mutations:

	herald_mark_read_total             counter    single acknowledgments
	herald_mark_all_read_total         counter    bulk acknowledgments
	herald_fallback_marks_total        counter    per-item fallback fan-out
	herald_fallback_dropped_total      counter    items beyond the fallback bound

Server of record:

	herald_service_errors_total        counter    failed calls by operation
	herald_api_requests_total          counter    reference API traffic
	herald_api_request_duration_seconds histogram reference API latency
	herald_notifications_published_total counter  publish operations

# Timer

Timer wraps duration measurement for histograms:

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RefreshDuration)

# Alerting Hints

A growing herald_refresh_skipped_total means poll cycles regularly outlast
the poll interval. A non-zero herald_fallback_dropped_total means more unread
items existed than the fallback bound; those items stay unread on the server
until the recipient's next mark-all or individual acknowledgment.
*/
package metrics
