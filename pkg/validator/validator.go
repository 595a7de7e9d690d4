package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	bloodGroups = map[string]struct{}{
		"A+": {}, "A-": {},
		"B+": {}, "B-": {},
		"AB+": {}, "AB-": {},
		"O+": {}, "O-": {},
	}

	phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)
)

// Register installs the domain validations on gin's binding engine so
// request structs can use them in binding tags.
//
//	BloodGroup string `json:"blood_group" binding:"required,bloodgroup"`
//	Phone      string `json:"phone" binding:"required,phone_e164"`
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("bloodgroup", validBloodGroup); err != nil {
		return err
	}
	return v.RegisterValidation("phone_e164", validPhone)
}

func validBloodGroup(fl validator.FieldLevel) bool {
	_, ok := bloodGroups[fl.Field().String()]
	return ok
}

func validPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}
