// Package requestid provides request id generation, propagation, and
// extraction for correlating log lines and audit events across a request.
package requestid
