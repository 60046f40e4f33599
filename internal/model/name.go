package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnprocessableName indicates a name that cannot be split into at least a
// first and last part. Callers skip such contacts rather than failing a batch.
var ErrUnprocessableName = eris.New("model: name has fewer than two parts")

// SplitName breaks a full name into first, middle, and last parts.
// The first token becomes the first name, the final token the last name, and
// anything between them the middle name. Returns ErrUnprocessableName for
// names with fewer than two whitespace-separated tokens.
func SplitName(fullName string) (first, middle, last string, err error) {
	parts := strings.Fields(fullName)
	if len(parts) < 2 {
		return "", "", "", eris.Wrapf(ErrUnprocessableName, "%q", fullName)
	}
	first = parts[0]
	last = parts[len(parts)-1]
	if len(parts) > 2 {
		middle = strings.Join(parts[1:len(parts)-1], " ")
	}
	return first, middle, last, nil
}

// NewContact builds a Contact from a scraped name and title, populating the
// split name parts. Returns ErrUnprocessableName when the name cannot be split.
func NewContact(fullName, jobTitle string) (*Contact, error) {
	first, middle, last, err := SplitName(fullName)
	if err != nil {
		return nil, err
	}
	return &Contact{
		FullName:    strings.TrimSpace(fullName),
		FirstName:   first,
		MiddleName:  middle,
		LastName:    last,
		JobTitle:    strings.TrimSpace(jobTitle),
		EmailSource: EmailSourceUnverified,
		Status:      StatusUnverified,
	}, nil
}
