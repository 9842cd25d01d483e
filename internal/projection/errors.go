package projection

import "errors"

var errNotAnObject = errors.New("document is not a JSON object")
