// Package config loads and watches the broodcheck configuration file.
//
// Top-level types:
//   - Config{Source, Output, Strict, Neural, Notify}: full tree parsed from YAML
//   - Source: type (demo|csv|prometheus), path, endpoint, metric, labels,
//     timeout, auth, tls
//   - AuthConfig: mode (apikey|bearer|basic|none); Key(), Token() and
//     Password() resolve secrets from environment variables
//   - NeuralConfig: enables series validation; Corridor() merges overrides
//     onto corridor.DefaultNeuralCorridor
//   - NotifyConfig, WebhookConfig: webhook targets; URL() resolves from env
//
// Load(path) reads the YAML file, applies defaults (demo source, text output,
// 10s fetch timeout) and validates enums and required fields. Default()
// returns the configuration used when no file is given.
//
// Watch(ctx, path, onChange) reloads the file through fswatch.File on every
// write or atomic replace.
package config
