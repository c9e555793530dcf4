// Package triage is the business boundary for warden's staged image triage.
// It defines the Engine (per-image state machine with cost-gating), the
// prediction normalizer, the Service (dedup, lifecycle, async dispatch), the
// Store interface, and the domain models.
package triage
