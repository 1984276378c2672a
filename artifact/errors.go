package artifact

import "github.com/hupe1980/fashionagent/core"

// ErrNotFound is returned when no artifact exists at the requested location.
// It matches core.ErrNotFound under errors.Is.
var ErrNotFound = core.E("artifact.get", core.KindNotFound, nil)
