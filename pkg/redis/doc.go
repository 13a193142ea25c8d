// Package redis connects the engine to its redis server: a Connect helper
// that retries until the server answers, env-driven Config, and a health
// check closure for liveness probes. The cache itself lives in pkg/kv; this
// package only hands it a ready client.
package redis
