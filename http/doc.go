// Package http provides response helpers for serving rendered components.
//
//	res := loomhttp.NewResponse(w)
//
//	markup, err := renderer.Render("Greeting", overrides)
//	if err != nil {
//	    res.ResolutionError(err) // 404 / 422 / 500 depending on the failure
//	    return
//	}
//	res.HTML(200, markup)
//
// ResolutionError knows the resolution error taxonomy: unknown component
// names become 404 with the known names listed, missing props and validation
// failures become 422, everything else 500.
package http
