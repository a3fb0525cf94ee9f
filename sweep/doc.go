// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sweep implements the background consistency validator.
//
// The online vote path keeps voter and item aggregates correct
// transactionally, but documents deleted out-of-band or interrupted
// best-effort writes can still leave drift behind. The Validator
// periodically re-derives every tally from the confirmed vote set,
// rejects votes whose voter or item has disappeared, and rewrites any
// counter that disagrees with the recount. All corrections are logged.
package sweep
