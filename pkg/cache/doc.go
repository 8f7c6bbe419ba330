// Package cache provides a small TTL key-value cache with in-memory and Redis backends.
//
// Both backends support Take, an atomic read-and-delete used for single-use values
// such as OAuth state nonces. Memory is meant for a single process; Redis lets several
// replicas share values, so a callback may land on a different instance than the
// authorization redirect.
package cache
