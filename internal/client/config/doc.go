// Package config loads runtime configuration for the docme CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the docme server
//	-d string   local SQLite file
//	-m string   directory for document images
//	-l string   log file
//	-s int      background sync interval (seconds, 0 disables)
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//	-p          purge clean local records the server no longer lists
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds. Absent keys keep the default:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "database_dsn": "docme.db",
//	  "assets_dir": "assets",
//	  "log_file": "docme.log",
//	  "sync_interval": "1m",
//	  "online_check_interval": "3s",
//	  "request_timeout": "15s",
//	  "prune_missing": false
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
