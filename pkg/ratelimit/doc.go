// Package ratelimit provides sliding window rate limiting over trimmed
// timestamp windows.
//
// Two storage backends are included: an in-memory store with oldest-first
// trimming and idle-key eviction for single-process deployments, and a Redis
// store using sorted sets with native expiry for multi-process deployments
// that need cross-worker consistency.
package ratelimit
