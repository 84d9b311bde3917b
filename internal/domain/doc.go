// Package domain models the parametric weather-risk data that the engine
// computes over: synthetic weather observations, insurance products, and
// the risk events a product's trigger conditions produce.
//
// # Synthetic Data
//
// The engine has no upstream observation feed. Hourly weather series are
// generated deterministically from a region identity: the region + weather
// type string is folded into a 32-bit seed (rolling hash, multiplier 31),
// and a linear-congruential generator
//
//	state = (state*9301 + 49297) mod 233280
//
// drives the per-hour random factor. The random stream is anchored at the
// Unix epoch — the draw for hour H since the epoch is always the H-th
// output of the stream — so the value at a given timestamp never depends
// on the range a caller asked for. Regenerating a wider range reproduces
// the narrower range byte for byte.
//
// # Products and Tiers
//
// A product declares a threshold ladder over an aggregated weather value.
// Tiers are ordinal severities (tier1 < tier2 < tier3); a triggered window
// resolves to exactly one tier. Ladders are not assumed to be ordered by
// value or by tier — resolution handles inverted configurations.
//
// # ID Generation
//
// Risk event IDs are deterministic UUIDv5 values derived from
// (productID, district, timestamp, tier) under a fixed namespace, so
// re-evaluating the same inputs yields the same event identity and
// downstream consumers can upsert idempotently.
package domain
