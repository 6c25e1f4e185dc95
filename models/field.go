package models

// Field names one column of the users table. Only the constants below are
// valid; they are the only identifiers ever written into SQL text.
type Field string

const (
	FieldID        Field = "id"
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldEmail     Field = "email"
	FieldPassword  Field = "password"
	FieldBirthday  Field = "birthday"
	FieldStatus    Field = "status"
)

// Fields lists every column in table order.
var Fields = []Field{
	FieldID,
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPassword,
	FieldBirthday,
	FieldStatus,
}

// Column returns the column identifier for f.
func (f Field) Column() string { return string(f) }

// Valid reports whether f is one of the users table columns.
func (f Field) Valid() bool {
	switch f {
	case FieldID, FieldFirstName, FieldLastName, FieldEmail, FieldPassword, FieldBirthday, FieldStatus:
		return true
	}
	return false
}

// Updatable reports whether f may appear in an UPDATE. The id is immutable.
func (f Field) Updatable() bool { return f.Valid() && f != FieldID }

// ParseField converts a column name into a Field.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if !f.Valid() {
		return "", &ValidationError{Field: name, Reason: "unknown column"}
	}
	return f, nil
}
