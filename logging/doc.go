// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package logging builds the process-wide structured logger.

Records are JSON on stdout with the source location attached:

	log := logging.NewLogger(cfg.LogLevel)
	log.Info("database schema ready")

NewLogger also installs the logger as the slog default, so packages that
log through slog directly share its handler and level.

# Levels

LOG_LEVEL accepts debug, info, warn (or warning) and error. Anything else
falls back to info.
*/
package logging
