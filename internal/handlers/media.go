package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperror"
	"marketplace/internal/media/sniffer"
	"marketplace/internal/service"
)

const imageField = "image"

func isMultipart(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEMultipartPOSTForm
}

// formImage opens the optional image file of a multipart request. The
// extension is checked before any business logic runs. The returned func
// closes the file and is never nil.
func formImage(c *gin.Context) (*service.ImageUpload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, nil
	}

	header, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, apperror.NewValidation("Invalid multipart body")
	}

	if _, err := sniffer.CheckExtension(header.Filename); err != nil {
		return nil, noop, apperror.NewValidation("File not supported")
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, apperror.NewInternal("Something went wrong!", err)
	}

	return &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: sniffer.MimeTypeFromHTTP(http.Header(header.Header)),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

// formObject flattens multipart text fields into a JSON-shaped map so form
// and JSON bodies share one decoding path. Repeated keys keep the first
// value.
func formObject(c *gin.Context) (map[string]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.NewValidation("Invalid multipart body")
	}
	values := make(map[string]string, len(form.Value))
	for key, vals := range form.Value {
		if len(vals) > 0 {
			values[key] = vals[0]
		}
	}
	return values, nil
}
