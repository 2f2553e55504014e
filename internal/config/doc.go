// Package config provides centralized configuration management for sectorpulse.
// It handles loading configuration from multiple sources, validation, and a
// type-safe API for the rest of the application.
//
// # Configuration Sources
//
// Configuration is resolved in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Built-in defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SECTORPULSE_* for namespacing:
//
//	SECTORPULSE_PROVIDER_BASE_URL=https://data.example.com
//	SECTORPULSE_ENGINE_MODE=top
//	SECTORPULSE_ENGINE_LOOKBACK_DAYS=10
//	SECTORPULSE_TELEGRAM_TOKEN=123456:ABC...
//	SECTORPULSE_TELEGRAM_CHAT_ID=-100123456
//
// The watchlist itself is structured data and is only configurable through
// the YAML file.
//
// # Configuration File
//
// When no explicit path is given, Load probes config.yaml and
// configs/config.yaml relative to the working directory. A missing file is
// not an error; defaults and environment variables still apply.
//
// # Validation
//
// All configuration is validated at load time: required fields are present,
// numeric values are within acceptable ranges, URLs are well formed, and the
// Telegram token and chat ID are either both set or both empty.
package config
