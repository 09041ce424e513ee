package api

import (
	"floodmap.app/pkg/validation"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request structs:
// geometrykind (flood|footprint) and isodate (YYYY-MM-DD).
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("geometrykind", validateGeometryKind); err != nil {
		return err
	}
	return v.RegisterValidation("isodate", validateISODate)
}

func validateGeometryKind(fl validator.FieldLevel) bool {
	return validation.IsValidGeometryKind(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	_, ok := validation.ParseDate(fl.Field().String())
	return ok
}
