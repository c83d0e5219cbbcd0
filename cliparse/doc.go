// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - IdentitySalt: Secret for identity signatures (required)
  - NATSURL: NATS server for event relay (optional)
  - NATSSubjectPrefix: Subject prefix for relayed events (default: elections)
  - RelayInterval: Relay polling interval (default: 2s)
  - LogLevel, LogFormat: slog level and text/json output (default: info, text)

# Sources

Settings are layered, later sources winning:

 1. Defaults
 2. YAML file from -c/--config or CONFIG_FILE
 3. Environment variables, plus a .env file (--env-file) for unset ones
 4. Command-line flags that were explicitly passed

# CLI Flags

	-p, --port              Server port
	-d, --database-url      Database URL
	-t, --database-type     Database type
	    --identity-salt     Identity signature salt
	    --nats-url          NATS server URL
	    --nats-subject-prefix
	    --relay-interval    e.g. 2s
	    --log-level         debug, info, warn, error
	    --log-format        text or json
	-c, --config            YAML config file
	    --env-file          .env file (default .env)

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, IDENTITY_SALT, NATS_URL,
	NATS_SUBJECT_PREFIX, RELAY_INTERVAL, LOG_LEVEL, LOG_FORMAT, CONFIG_FILE

# Config File

YAML keys match the environment variables in lower case:

	port: 3318
	database_url: /var/lib/elections.db
	identity_salt: change-me
	nats_url: nats://localhost:4222
	relay_interval: 2s

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - IDENTITY_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - Log level, log format and relay interval must parse
*/
package cliparse
