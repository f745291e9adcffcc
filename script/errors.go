// SPDX-License-Identifier: EPL-2.0

package script

import "errors"

var (
	ErrMalformedPayload = errors.New("script: malformed payload")
	ErrUnknownCommand   = errors.New("script: unknown command kind")
	ErrNotAttached      = errors.New("script: no mixer attached")
	ErrNoPlayer         = errors.New("script: no player attached")
)
