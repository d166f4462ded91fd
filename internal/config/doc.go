// Package config resolves strongly typed application settings from layered
// KEY=VALUE env files (a base file and a local override, override wins field
// by field) plus an optional YAML server tuning file. Loading is fail-fast:
// any field that does not convert to its declared type aborts the whole load,
// and the resolved Settings value is treated as read-only for the lifetime of
// the process.
package config
