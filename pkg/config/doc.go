/*
Package config loads Herald's YAML configuration.

A config file covers the three tunable surfaces: the reference server (listen
address, data directory, optional JWT secret), the per-session sync engine
(poll interval, fetch limit, fallback batch size) and logging. Every field
has a default, so an empty or partial file is valid.

	server:
	  addr: ":8080"
	  dataDir: /var/lib/herald
	  authSecret: ""          # empty disables JWT auth
	engine:
	  pollInterval: 60s
	  fetchLimit: 100
	  fallbackBatchSize: 50
	log:
	  level: info
	  json: true
*/
package config
