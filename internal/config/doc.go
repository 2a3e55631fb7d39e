// Package config loads and validates server configuration from the
// environment (optionally seeded from a .env file).
package config
