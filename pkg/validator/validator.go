package validator

import (
	"log"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	loginPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)
	registerOnce sync.Once
)

func RegisterGinValidator() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
			err := v.RegisterValidation("login", loginValidator)
			if err != nil {
				log.Fatal("register login validator failed")
			}
		}
	})
}

var loginValidator validator.Func = func(fl validator.FieldLevel) bool {
	return loginPattern.MatchString(fl.Field().String())
}
