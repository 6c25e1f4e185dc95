package repo

import "fmt"

// QueryError reports a failed statement. Op names the repository operation
// (e.g. "get_email"); SQL text and bound values are deliberately left out.
// Err is the mapped driver error, so db.IsDuplicateKey and friends still work.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string { return fmt.Sprintf("repo/user: %s: %v", e.Op, e.Err) }
func (e *QueryError) Unwrap() error { return e.Err }

func queryErr(op string, err error) error {
	return &QueryError{Op: op, Err: err}
}
