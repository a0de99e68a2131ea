// Package probe implements the dependency health checks.
//
// Clients holds one lazily constructed handle per dependency kind, built
// by a Factory. Each probe performs a single round-trip against its
// dependency and reports through health.Outcome or a classified
// health.Fault. Checks binds the probes to their enablement rules.
//
// Probes never construct a client unless they run, so a disabled check
// costs nothing. The exported probe functions do not consult settings:
// called directly they always dial. Checks gates them when given a
// Registry.
package probe
