package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/vxsahu/urban-threadz/pkg/errors"
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("GET %s returned %d: %s", e.URL, e.Status, body)
}

// AsAppError translates a Fetch error into an AppError for the named
// upstream. A 404 becomes NotFound; everything else means the upstream is
// unusable right now.
func AsAppError(err error, upstream string) error {
	if err == nil {
		return nil
	}

	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return apperrors.NotFound(upstream, se.URL)
	}
	if errors.Is(err, ErrCircuitOpen) {
		return apperrors.Unavailable(upstream+" circuit open", err)
	}
	return apperrors.Unavailable(upstream+" unavailable", err)
}
