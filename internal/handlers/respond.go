package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"marketplace/internal/apperror"
	"marketplace/internal/middleware"
)

// fail answers with the error's status. Server side failures are logged
// here with the request id since their detail never reaches the client.
func (h HandlerSet) fail(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); !ok || appErr.StatusCode() >= 500 {
		h.log.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFrom(c)).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	middleware.AbortWithError(c, err)
}

// bindError turns a gin binding failure into a validation error naming the
// offending fields.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return apperror.NewValidation("Invalid or missing fields: " + strings.Join(fields, ", "))
	}
	return apperror.NewValidation("Invalid request body")
}

// useJSONFieldNames makes validation errors report the json key rather
// than the Go field name.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
}
