// Package config holds the runtime configuration for sharecrawl.
//
// Configuration is assembled from compiled-in defaults (NewConfig),
// CLI flags applied by the cmd package, and an optional YAML
// configuration file (.sharecrawl, loaded by LoadConfigFile and located
// by FindConfigFile). The file carries crawl defaults plus per-share
// overrides keyed by share link, mirroring how different shares need
// different depth budgets or extension filters. The Effective accessors
// resolve a value for one share: its file entry wins over the file's
// defaults section, which wins over the flag or built-in value.
package config
