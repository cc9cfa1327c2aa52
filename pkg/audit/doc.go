// Package audit records security violations detected at the tenant boundary.
//
// Events are append-only and retained in a bounded window with oldest-first
// trimming, so a misbehaving client cannot grow process memory without bound.
// The SlogStorage decorator ships events through the structured log pipeline
// for external collection.
package audit
