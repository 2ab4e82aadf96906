package lock

import "github.com/Enlarium/descent-engine-sub000/clock"

// defaultClock backs every timed operation in this package with the
// spec's default one-hour timeout cap (spec §6). Primitives that need
// a different cap can be built with clock.Init directly and threaded
// through a package of their own; this package's timed variants are
// the common case.
var defaultClock, _ = clock.Init(0)
