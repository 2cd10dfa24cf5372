// Package passwords checks that a new password is strong enough to be stored.
package passwords

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
)

const (
	MinLength     = 8
	MaxSimilarity = 0.7
)

//go:embed common_passwords.txt
var commonPasswordsFile string

var (
	commonPasswords = parseCommonPasswords(commonPasswordsFile)
	nonWordRE       = regexp.MustCompile(`\W+`)
)

// Attributes are the user properties a password must not resemble. Empty
// values are ignored.
type Attributes struct {
	Username string
	Email    string
	Nickname string
}

// Validate returns one message per failed check, or nil if the password is
// acceptable.
func Validate(password string, attrs Attributes) []string {
	var problems []string

	if msg := similarity(password, attrs); msg != "" {
		problems = append(problems, msg)
	}
	if len([]rune(password)) < MinLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinLength))
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}
	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}

	return problems
}

func similarity(password string, attrs Attributes) string {
	lower := strings.ToLower(password)
	candidates := []struct {
		name  string
		value string
	}{
		{"username", attrs.Username},
		{"email address", attrs.Email},
		{"nickname", attrs.Nickname},
	}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		parts := append(nonWordRE.Split(c.value, -1), c.value)
		for _, part := range parts {
			if part == "" {
				continue
			}
			if quickRatio(lower, strings.ToLower(part)) >= MaxSimilarity {
				return fmt.Sprintf("The password is too similar to the %s.", c.name)
			}
		}
	}
	return ""
}

// quickRatio is an upper bound on how alike a and b are: twice the number of
// characters they share (counted with multiplicity) over their total length.
func quickRatio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}
	avail := map[rune]int{}
	for _, r := range br {
		avail[r]++
	}
	matches := 0
	for _, r := range ar {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseCommonPasswords(data string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			set[line] = struct{}{}
		}
	}
	return set
}
