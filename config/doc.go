// Package config loads the probe's settings.
//
// The key space is flat and upper-case (REDIS_HOST, ENABLE_REDIS_CHECK, ...).
// Values come from an optional YAML file and then the environment, which
// wins. String values support strict environment expansion and secret
// references:
//   - Full value:  secretref:file:redis_password
//   - Environment: secretref:env:REDIS_PASSWORD
//   - Inline use:  Bearer secretref:file:api_token
//   - Expansion:   ${DB_HOST}:5432
//
// Settings.Has reports only keys that were explicitly configured, so
// defaults passed to the typed accessors never enable a check.
package config
