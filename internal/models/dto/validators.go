package dto

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"viksitkanpur/internal/locale"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by the request DTOs
// to gin's validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("ui_lang", validateLang)
		}
	})
}

// validateLang accepts the supported dashboard languages
func validateLang(fl validator.FieldLevel) bool {
	switch locale.Lang(fl.Field().String()) {
	case locale.English, locale.Hindi:
		return true
	}
	return false
}
