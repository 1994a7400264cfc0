package entity

import (
	"strings"
	"time"
)

// Column limits of the patients table.
const (
	MaxNameLength  = 100
	MaxMRNLength   = 50
	MaxEmailLength = 255
	MaxPhoneLength = 20
)

// DateLayout is the wire and storage format of DateOfBirth.
const DateLayout = time.DateOnly

type Patient struct {
	ID                  int64
	FirstName           string
	LastName            string
	DateOfBirth         time.Time
	MedicalRecordNumber string
	Email               *string
	PhoneNumber         *string
	CreatedAt           time.Time
}

// NewPatient normalizes the inputs. Blank optional values become nil and the
// email is lower-cased.
func NewPatient(id int64, firstName, lastName string, dob time.Time, mrn string, email, phone *string) Patient {
	return Patient{
		ID:                  id,
		FirstName:           strings.TrimSpace(firstName),
		LastName:            strings.TrimSpace(lastName),
		DateOfBirth:         time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC),
		MedicalRecordNumber: strings.ToUpper(strings.TrimSpace(mrn)),
		Email:               normalizeOptional(email, strings.ToLower),
		PhoneNumber:         normalizeOptional(phone, nil),
	}
}

func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func normalizeOptional(v *string, fn func(string) string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	if fn != nil {
		s = fn(s)
	}
	return &s
}

// PatientListFilter pages through patients ordered by last name, first name and id.
type PatientListFilter struct {
	// Search matches name, medical record number or email, case-insensitive.
	Search string
	Limit  int32
	Offset int32
}
