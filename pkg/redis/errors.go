package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned when Connect is called without a URL.
	ErrEmptyConnectionURL = errors.New("empty redis connection URL")
	// ErrFailedToParseRedisConnString wraps URL parsing failures.
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	// ErrRedisNotReady is returned when the server does not answer pings
	// within the connect timeout.
	ErrRedisNotReady = errors.New("redis did not become ready within the given time period")
	// ErrHealthcheckFailed wraps ping failures from Healthcheck.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
