// Package validation checks flat string maps against pipe-separated rule
// strings. Contributed commands declare their argument rules with it, and the
// host configuration is checked with it at load time.
//
// # Basic Usage
//
//	v := validation.Make(map[string]string{
//	    "name": "Alice",
//	}, validation.Rules{
//	    "name": "required|alpha|max:32",
//	})
//
//	if v.Fails() {
//	    // v.Errors() returns *Errors with Bag map[string][]string
//	    // JSON: {"errors": {"field": ["message1", "message2"]}}
//	}
//
// # Available Rules
//
//   - required         : field must be present and non-empty
//   - min:n / max:n    : UTF-8 character count bounds
//   - numeric / integer: parses as a float / an int
//   - boolean          : strconv.ParseBool accepts it
//   - gte:n / lte:n    : numeric bounds
//   - in:a,b / not_in:a,b
//   - alpha / alpha_num / alpha_dash
//   - regex:expr       : must be the last rule of the string
//
// Processing of a field stops at its first failing rule. Fields without
// "required" are skipped when empty.
package validation
