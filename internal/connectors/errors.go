package connectors

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse: тело ответа не похоже ни на один из ожидаемых форматов.
var ErrMalformedResponse = errors.New("malformed response from analysis service")

// StatusError: сервис анализа ответил не-2xx.
type StatusError struct {
	Code int
	Body string // первые байты тела для лога
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analysis service returned HTTP %d: %s", e.Code, e.Body)
}
