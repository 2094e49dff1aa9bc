package echoapi

import (
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core/roster"
)

// MessageResponse is the body of successful mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// param returns the decoded path parameter.
// Echo routes on URL.RawPath when the request carries one (escaped slashes such as %2F),
// otherwise on the already decoded URL.Path, which must not be decoded twice.
func param(ctx echo.Context, name string) string {
	v := ctx.Param(name)
	if ctx.Request().URL.RawPath == "" {
		return v
	}
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

// formFile returns the uploaded file of a multipart field, nil when none was sent.
func formFile(ctx echo.Context, field string) (*roster.File, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", field)
	}
	if fh.Filename == "" {
		return nil, nil
	}
	return &roster.File{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}, nil
}
