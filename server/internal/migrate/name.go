package migrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const namePrefix = "migration"

var nameRegexp = regexp.MustCompile(`^migration([A-Z](?:[A-Za-z0-9]*[A-Za-z])?)([0-9]+)$`)

// Name returns the migration name for the given human-readable label and
// creation time, e.g. "add email to person" becomes
// migrationAddEmailToPerson1699822619037.
func Name(label string, created time.Time) string {
	return namePrefix + Label(label) + strconv.FormatInt(created.UnixMilli(), 10)
}

// Label converts a human-readable label to the UpperCamelCase form used in
// migration names and type names. Any character that is not a letter or digit
// separates words.
func Label(label string) string {
	title := cases.Title(language.Und, cases.NoLower)
	words := strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, word := range words {
		b.WriteString(title.String(word))
	}
	return b.String()
}

// ParseName splits a migration name into its label and creation time.
func ParseName(name string) (string, time.Time, error) {
	matches := nameRegexp.FindStringSubmatch(name)
	if matches == nil {
		return "", time.Time{}, &InvalidMigrationNameError{
			Name:   name,
			Reason: fmt.Sprintf("must match %s", nameRegexp.String()),
		}
	}
	millis, err := strconv.ParseInt(matches[2], 10, 64)
	if err != nil {
		return "", time.Time{}, &InvalidMigrationNameError{
			Name:   name,
			Reason: fmt.Sprintf("invalid timestamp: %s", err),
		}
	}

	return matches[1], time.UnixMilli(millis), nil
}
