package service

import (
	"fmt"

	"github.com/okian/fairway/internal/domain/types"
)

// ErrNotStarted is returned by request methods called before Start.
var ErrNotStarted = fmt.Errorf("%w: service not started", types.ErrUnavailable)
