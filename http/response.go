package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/container"
	"github.com/loomkit/loom/framework/validation"
)

// Response wraps http.ResponseWriter with the helpers the component server
// uses to ship rendered output and resolution failures.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// JSON sends a JSON response.
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// HTML sends rendered component markup.
func (res *Response) HTML(status int, markup string) {
	res.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	res.w.WriteHeader(status)
	_, _ = res.w.Write([]byte(markup))
}

// NoContent sends 204 with no body. Used when a middleware halted the
// resolution and there is nothing to render.
func (res *Response) NoContent() {
	res.w.WriteHeader(http.StatusNoContent)
}

// ResolutionError translates a resolution failure into an HTTP response.
//
//	unknown component name        → 404 with the known names
//	missing prop / validation     → 422 with the detail
//	anything else                 → 500
func (res *Response) ResolutionError(err error) {
	var notFound *component.NotFoundError
	if errors.As(err, &notFound) {
		res.JSON(http.StatusNotFound, envelope{
			"message": notFound.Error(),
			"known":   notFound.Known,
		})
		return
	}

	var missing *container.MissingPropError
	if errors.As(err, &missing) {
		res.JSON(http.StatusUnprocessableEntity, envelope{"message": missing.Error()})
		return
	}

	var invalid *validation.Error
	if errors.As(err, &invalid) {
		res.JSON(http.StatusUnprocessableEntity, envelope{
			"message": invalid.Error(),
			"errors":  invalid.Errors.Bag,
		})
		return
	}

	res.JSON(http.StatusInternalServerError, envelope{"message": err.Error()})
}

type envelope map[string]any
