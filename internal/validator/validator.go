// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"strings"

	"mybudget/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Configure(v)
	}
}

// Configure installs the custom tags, type funcs and json field naming on v.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterCustomTypeFunc(dateValue, models.Date{})
	_ = v.RegisterValidation("transaction_kind", validateTransactionKind)
	_ = v.RegisterValidation("category_kind", validateCategoryKind)
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" {
		name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	}
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// decimalValue lets numeric tags such as gt=0 run against decimal amounts.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

// dateValue makes a zero Date fail "required".
func dateValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(models.Date); ok && !d.IsZero() {
		return d.Time
	}
	return nil
}

func validateTransactionKind(fl validator.FieldLevel) bool {
	switch models.TransactionKind(fl.Field().String()) {
	case models.TransactionKindIncome, models.TransactionKindExpense:
		return true
	}
	return false
}

func validateCategoryKind(fl validator.FieldLevel) bool {
	switch models.CategoryKind(fl.Field().String()) {
	case models.CategoryKindIncome, models.CategoryKindExpense:
		return true
	}
	return false
}
