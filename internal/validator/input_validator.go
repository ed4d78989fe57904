package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"innledger/internal/usecase"
)

var (
	// 大文字で始まる英数字
	partyNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

	// 大文字で始まる英数字（空白も可）
	goodNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9 ]*$`)
)

type inputValidator struct {
	v *validator.Validate
}

// Usecaseは interface を依存注入
func NewInputValidator() usecase.InputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラーの項目名はjsonの名前にする
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("partyname", func(fl validator.FieldLevel) bool {
		return partyNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("goodname", func(fl validator.FieldLevel) bool {
		return goodNamePattern.MatchString(fl.Field().String())
	})

	return &inputValidator{v: v}
}

// 最初に失敗した項目だけを説明する
func (iv *inputValidator) Struct(s interface{}) error {
	err := iv.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "partyname":
		return field + " must start with a capital letter and contain only letters and digits"
	case "goodname":
		return field + " must start with a capital letter and contain only letters, digits and spaces"
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}
