// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity derives stable voter identity keys from human-readable
display names.

# Derivation

NormalizeKey lowercases the name, strips diacritics (NFD decomposition
with combining marks removed) and collapses whitespace runs to single
hyphens:

	identity.NormalizeKey("Alice Örn")  // "alice-orn"
	identity.NormalizeKey("  José  B ") // "jose-b"

The derivation is deterministic and idempotent - applying it to its own
output is a no-op - so a voter record created on first vote is always
found again on later votes for the same display name.
*/
package identity
