package binder

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/EliasObeid9-02/library-system/pkg/models"
)

var (
	dateRE          = regexp.MustCompile(`^\d{4}-(0[0-9]|1[0-2])-(0[0-9]|1[0-9]|2[0-9]|3[0-1])$`)
	personNameRE    = regexp.MustCompile(`^\p{L}+(?:[ '-]\p{L}+)*$`)
	isbnRE          = regexp.MustCompile(`^\d{13}$`)
	asciiUsernameRE = regexp.MustCompile(`^[A-Za-z0-9.@+_-]+$`)
	nicknameRE      = regexp.MustCompile(`^[\p{L}\p{N} _-]+$`)
)

// dateValidator ensures the value matches the format YYYY-MM-DD or the empty
// string. The empty string is allowed so the validator can be used to clear out
// values; add `ne=` to the tag when the value is required.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if !dateRE.MatchString(value) {
		return false
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// personNameValidator accepts letter-only words joined by single spaces,
// hyphens or apostrophes.
func personNameValidator(fl validator.FieldLevel) bool {
	return personNameRE.MatchString(fl.Field().String())
}

// bookISBNValidator expects the value after the isbn modifier has stripped the
// separators.
func bookISBNValidator(fl validator.FieldLevel) bool {
	return isbnRE.MatchString(fl.Field().String())
}

func asciiUsernameValidator(fl validator.FieldLevel) bool {
	return asciiUsernameRE.MatchString(fl.Field().String())
}

func nicknameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return nicknameRE.MatchString(value)
}

func languageValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, lang := range models.Languages {
		if value == lang {
			return true
		}
	}
	return false
}
