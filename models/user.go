package models

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the storage and text form of a birthday.
const DateLayout = time.DateOnly

// User represents a row in the "users" table.
// Fields map 1-to-1 with columns. Password is stored exactly as given.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Password  string
	Birthday  time.Time
	Status    int
}

// FullName is first and last name joined by a single space.
func (u *User) FullName() string { return u.FirstName + " " + u.LastName }

// CreateUserParams holds the fields required to create a new user. The id is
// assigned by the database.
type CreateUserParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Birthday  time.Time
	Status    int
}

// Validate rejects params with a missing required value. Status has no
// required value; zero is a valid code.
func (p CreateUserParams) Validate() error {
	required := []struct {
		field Field
		value string
	}{
		{FieldFirstName, p.FirstName},
		{FieldLastName, p.LastName},
		{FieldEmail, p.Email},
		{FieldPassword, p.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: string(r.field), Reason: "required"}
		}
	}
	if p.Birthday.IsZero() {
		return &ValidationError{Field: string(FieldBirthday), Reason: "required"}
	}
	return nil
}

// UpdateUserParams holds fields that can be updated. All fields are pointers
// so callers only set what needs changing; the repository builds the explicit
// SQL accordingly.
type UpdateUserParams struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Birthday  *time.Time
	Status    *int
}

// Change is one column assignment of an update.
type Change struct {
	Field Field
	Value any
}

// Changes returns the set fields in table order. Values are dereferenced.
func (p UpdateUserParams) Changes() []Change {
	changes := make([]Change, 0, 6)
	if p.FirstName != nil {
		changes = append(changes, Change{FieldFirstName, *p.FirstName})
	}
	if p.LastName != nil {
		changes = append(changes, Change{FieldLastName, *p.LastName})
	}
	if p.Email != nil {
		changes = append(changes, Change{FieldEmail, *p.Email})
	}
	if p.Password != nil {
		changes = append(changes, Change{FieldPassword, *p.Password})
	}
	if p.Birthday != nil {
		changes = append(changes, Change{FieldBirthday, *p.Birthday})
	}
	if p.Status != nil {
		changes = append(changes, Change{FieldStatus, *p.Status})
	}
	return changes
}

// Validate rejects an update that sets nothing.
func (p UpdateUserParams) Validate() error {
	if len(p.Changes()) == 0 {
		return &ValidationError{Reason: "no fields to update"}
	}
	return nil
}

// ParseUpdate converts a column-name → value mapping into UpdateUserParams.
// Unknown columns, the id column, and values of the wrong type are rejected.
// Birthdays may be given as time.Time or as a "2006-01-02" string; statuses
// as any integer type or an integral float64 (as produced by encoding/json).
func ParseUpdate(values map[string]any) (UpdateUserParams, error) {
	var p UpdateUserParams
	if len(values) == 0 {
		return p, &ValidationError{Reason: "no fields to update"}
	}
	for name, v := range values {
		f, err := ParseField(name)
		if err != nil {
			return UpdateUserParams{}, err
		}
		if !f.Updatable() {
			return UpdateUserParams{}, &ValidationError{Field: name, Reason: "not updatable"}
		}

		switch f {
		case FieldBirthday:
			t, ok := toDate(v)
			if !ok {
				return UpdateUserParams{}, &ValidationError{Field: name, Reason: "expected a date"}
			}
			p.Birthday = &t
		case FieldStatus:
			n, ok := toInt(v)
			if !ok {
				return UpdateUserParams{}, &ValidationError{Field: name, Reason: "expected an integer"}
			}
			p.Status = &n
		default:
			s, ok := v.(string)
			if !ok {
				return UpdateUserParams{}, &ValidationError{Field: name, Reason: "expected a string"}
			}
			switch f {
			case FieldFirstName:
				p.FirstName = &s
			case FieldLastName:
				p.LastName = &s
			case FieldEmail:
				p.Email = &s
			case FieldPassword:
				p.Password = &s
			}
		}
	}
	return p, nil
}

// ParseDate parses a "2006-01-02" birthday in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return DateOf(x), !x.IsZero()
	case string:
		t, err := ParseDate(x)
		return t, err == nil
	}
	return time.Time{}, false
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return int(x), true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int(x), true
	}
	return 0, false
}
