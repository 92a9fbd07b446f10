package sale

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("quantity", func(fl validator.FieldLevel) bool {
		qty, ok := parseQuantity(fl.Field().String())
		return ok && !qty.IsNegative()
	})
	return v
}

type sessionForm struct {
	LineItems     []lineForm `validate:"min=1,dive"`
	InvoiceNumber string     `validate:"required"`
	CustomerID    int64      `validate:"gt=0"`
}

type lineForm struct {
	ProductID  int64    `validate:"gt=0"`
	Color      string   `validate:"required"`
	Quantities []string `validate:"min=1,dive,required,quantity"`
}

func formFor(s *Session) sessionForm {
	form := sessionForm{
		LineItems:     make([]lineForm, 0, len(s.LineItems)),
		InvoiceNumber: strings.TrimSpace(s.InvoiceNumber),
		CustomerID:    s.CustomerID,
	}
	for _, item := range s.LineItems {
		quantities := make([]string, len(item.Quantities))
		for i, q := range item.Quantities {
			quantities[i] = strings.TrimSpace(q)
		}
		form.LineItems = append(form.LineItems, lineForm{
			ProductID:  item.ProductID,
			Color:      strings.TrimSpace(item.Color),
			Quantities: quantities,
		})
	}
	return form
}

// Validate checks that the session may enter review. It returns nil or a
// *ValidationError naming every failing field category.
func Validate(s *Session) error {
	err := validate.Struct(formFor(s))
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	failed := make(map[Field]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		if field, ok := fieldFor(fe.StructField()); ok {
			failed[field] = true
		}
	}
	verr := &ValidationError{}
	for _, field := range fieldOrder {
		if failed[field] {
			verr.Fields = append(verr.Fields, field)
		}
	}
	return verr
}

func fieldFor(structField string) (Field, bool) {
	name := structField
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "LineItems":
		return FieldLineItems, true
	case "ProductID":
		return FieldProduct, true
	case "Color":
		return FieldColor, true
	case "Quantities":
		return FieldQuantity, true
	case "InvoiceNumber":
		return FieldInvoiceNumber, true
	case "CustomerID":
		return FieldCustomer, true
	}
	return "", false
}
