package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	timepkg "time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/iancoleman/strcase"
	"github.com/segmentio/encoding/json"
)

const (
	date     = "date"
	email    = "email"
	eqfield  = "eqfield"
	gt       = "gt"
	gte      = "gte"
	gtfield  = "gtfield"
	lte      = "lte"
	ltfield  = "ltfield"
	mx       = "max"
	mn       = "min"
	ne       = "ne"
	oneof    = "oneof"
	required = "required"

	asciiUsername = "ascii_username"
	bookISBN      = "book_isbn"
	language      = "language"
	nickname      = "nickname"
	personName    = "person_name"
)

var (
	timeType = reflect.TypeOf(timepkg.Time{})
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

// comparisons phrase what each bound or cross-field tag checks.
var comparisons = map[string]string{
	gt:      "be greater than",
	gte:     "be greater than or equal to",
	lte:     "be less than or equal to",
	mn:      "be greater than or equal to",
	mx:      "be less than or equal to",
	gtfield: "be greater than",
	ltfield: "be less than",
	eqfield: "match",
}

// fixedMessages replace the generic message for the custom validators whose
// wording users already know.
var fixedMessages = map[string]string{
	personName:    "Name must consist of only letters.",
	bookISBN:      "ISBN must be a string of digits of length 13.",
	asciiUsername: "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
	nickname:      "Nickname may contain only letters, numbers, spaces, underscores and hyphens.",
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()

	if msg, ok := fixedMessages[tag]; ok {
		return msg
	}

	switch tag {
	case required:
		return fmt.Sprintf("%q is required", field)
	case date:
		return fmt.Sprintf("%q should be in the format of YYYY-MM-DD", field)
	case email:
		return fmt.Sprintf("%q is not a valid email", field)
	case language:
		return fmt.Sprintf("%q is not a supported language", field)
	case gt, gte:
		bound := err.Param()
		if bound == "" && err.Type() == timeType {
			bound = "now"
		}
		return fmt.Sprintf("%q must %s %s", field, comparisons[tag], bound)
	case lte:
		return fmt.Sprintf("%q must %s %s", field, comparisons[tag], err.Param())
	case mn, mx:
		return formatLength(field, comparisons[tag], err)
	case gtfield, ltfield, eqfield:
		return fmt.Sprintf("%q must %s %s", field, comparisons[tag], strcase.ToSnake(err.Param()))
	case ne:
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case oneof:
		quoted := strings.Fields(err.Param())
		for i, option := range quoted {
			quoted[i] = strconv.Quote(option)
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(quoted, ", "))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// formatLength words min and max. Numbers are compared by value, strings and
// collections by length.
func formatLength(field, comparison string, err validator.FieldError) string {
	var unit string
	//exhaustive:ignore
	switch err.Kind() {
	case reflect.String:
		unit = "character"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = "element"
	default:
		return fmt.Sprintf("%q must %s %s", field, comparison, err.Param())
	}
	if err.Param() != "1" {
		unit += "s"
	}
	return fmt.Sprintf("%q length must %s %s %s", field, comparison, err.Param(), unit)
}
