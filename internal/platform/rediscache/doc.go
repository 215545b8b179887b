// Package rediscache provides a Redis read-through cache in front of the
// profile store for the display lookup every authenticated self-service
// request performs. Lookups that feed a write bypass it.
package rediscache
