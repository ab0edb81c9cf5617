// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ids provides the random ID strategies used for stored records.

Elections and tokens get random, unguessable primary keys. Votes do not:
they use the database's auto-increment key.

# Schemes

  - Hex: random hex, 16 bytes (32 characters) by default
  - Token: URL-safe base64 without padding, 24 bytes (192 bits) by default
  - ULID: sortable 26-character IDs (oklog/ulid)
  - UUID: version 4 UUIDs (google/uuid)

Pick a scheme by name from configuration:

	gen, err := ids.Parse("ulid")
	id, err := gen.NewID()
*/
package ids
