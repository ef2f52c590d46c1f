package markers

import "errors"

var ErrValidation = errors.New("invalid marker result")
