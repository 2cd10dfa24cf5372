package binder

import (
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

type mockFieldError struct {
	tag   string
	field string
	param string
	kind  reflect.Kind
}

func (e *mockFieldError) Error() string           { return "Mock Field Error" }
func (e *mockFieldError) Tag() string             { return e.tag }
func (e *mockFieldError) ActualTag() string       { return e.tag }
func (e *mockFieldError) Namespace() string       { return "" }
func (e *mockFieldError) StructNamespace() string { return "" }
func (e *mockFieldError) Field() string           { return e.field }
func (e *mockFieldError) StructField() string     { return "" }
func (e *mockFieldError) Value() interface{}      { return "" }
func (e *mockFieldError) Param() string           { return e.param }
func (e *mockFieldError) Kind() reflect.Kind {
	if e.kind == 0 {
		return reflect.String
	}
	return e.kind
}
func (e *mockFieldError) Type() reflect.Type               { return reflect.TypeOf("") }
func (e *mockFieldError) Translate(_ ut.Translator) string { return "" }

func TestFormatValidationError(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err mockFieldError
		msg string
	}{
		"required":          {mockFieldError{tag: required}, `"multi_word" is required`},
		"email":             {mockFieldError{tag: email}, `"multi_word" is not a valid email`},
		"date":              {mockFieldError{tag: date}, `"multi_word" should be in the format of YYYY-MM-DD`},
		"language":          {mockFieldError{tag: language}, `"multi_word" is not a supported language`},
		"gt":                {mockFieldError{tag: gt, param: "0"}, `"multi_word" must be greater than 0`},
		"lte":               {mockFieldError{tag: lte, param: "5", kind: reflect.Int}, `"multi_word" must be less than or equal to 5`},
		"max chars":         {mockFieldError{tag: mx, param: "40"}, `"multi_word" length must be less than or equal to 40 characters`},
		"max one char":      {mockFieldError{tag: mx, param: "1"}, `"multi_word" length must be less than or equal to 1 character`},
		"min chars":         {mockFieldError{tag: mn, param: "8"}, `"multi_word" length must be greater than or equal to 8 characters`},
		"max int":           {mockFieldError{tag: mx, param: "100", kind: reflect.Int}, `"multi_word" must be less than or equal to 100`},
		"min uint":          {mockFieldError{tag: mn, param: "1", kind: reflect.Uint}, `"multi_word" must be greater than or equal to 1`},
		"min float":         {mockFieldError{tag: mn, param: "0", kind: reflect.Float64}, `"multi_word" must be greater than or equal to 0`},
		"min slice":         {mockFieldError{tag: mn, param: "1", kind: reflect.Slice}, `"multi_word" length must be greater than or equal to 1 element`},
		"max slice":         {mockFieldError{tag: mx, param: "5", kind: reflect.Slice}, `"multi_word" length must be less than or equal to 5 elements`},
		"eqfield":           {mockFieldError{tag: eqfield, param: "NewPassword"}, `"multi_word" must match new_password`},
		"ltfield":           {mockFieldError{tag: ltfield, param: "DueDate"}, `"multi_word" must be less than due_date`},
		"ne":                {mockFieldError{tag: ne, param: "20"}, `"multi_word" can't be "20"`},
		"oneof":             {mockFieldError{tag: oneof, param: "available borrowed"}, `"multi_word" must be one of the following: "available", "borrowed"`},
		"person name":       {mockFieldError{tag: personName}, "Name must consist of only letters."},
		"book isbn":         {mockFieldError{tag: bookISBN}, "ISBN must be a string of digits of length 13."},
		"ascii username":    {mockFieldError{tag: asciiUsername}, "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."},
		"unknown validator": {mockFieldError{tag: "foo"}, `"multi_word" is invalid`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tc.err.field = "multi_word"
			assert.Equal(t, tc.msg, formatValidationError(&tc.err))
		})
	}
}
