// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Settings are read in increasing order of precedence:

  - .env in the working directory (optional, never overrides the environment)
  - environment variables
  - CLI flags

# Settings

	Flag            Env                 Default
	-p              PORT                3318
	-d              DATABASE_URL        (required)
	-t              DATABASE_TYPE       sqlite
	-max-grades     MAX_NUM_GRADES      7
	-languages      LANGUAGE_AVAILABLE  en,fr
	-election-ids   ELECTION_ID_SCHEME  hex
	-token-ids      TOKEN_ID_SCHEME     token
	-log-level      LOG_LEVEL           info

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE is not sqlite or postgres
  - an ID scheme is unknown
  - MAX_NUM_GRADES is not positive or no language is available

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	svc, err := elections.NewService(st, cfg.Settings())
*/
package cliparse
