package httpapi

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"studentportal/internal/academics"
)

// The grade tag validates letter grades on CGPA payloads.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
			return academics.ValidGrade(fl.Field().String())
		})
	}
}
