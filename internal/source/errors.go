package source

import "errors"

// ErrUnavailable marks an upstream load failure: the feed was unreachable or
// returned a malformed bulk payload. This is the only failure class the
// engine surfaces to users; everything below it normalizes away.
var ErrUnavailable = errors.New("source: upstream unavailable")
