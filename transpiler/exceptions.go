package transpiler

import "github.com/Sayiza/orapgsync-sub008/metadata"

// standardExceptions maps Oracle's predefined exception names to the
// PostgreSQL condition name that is their true semantic equivalent — the
// name RAISE and WHEN accept directly, not a bare SQLSTATE — per the
// glossary's standard exception map.
var standardExceptions = map[string]string{
	"no_data_found":           "no_data_found",
	"too_many_rows":           "too_many_rows",
	"zero_divide":             "division_by_zero",
	"value_error":             "invalid_text_representation",
	"invalid_number":          "invalid_text_representation",
	"dup_val_on_index":        "unique_violation",
	"invalid_cursor":          "invalid_cursor_state",
	"cursor_already_open":     "duplicate_cursor",
	"timeout_on_resource":     "lock_not_available",
	"login_denied":            "invalid_authorization_specification",
	"not_logged_on":           "connection_does_not_exist",
	"program_error":           "internal_error",
	"storage_error":           "out_of_memory",
	"rowtype_mismatch":        "datatype_mismatch",
	"collection_is_null":      "null_value_not_allowed",
	"subscript_beyond_count":  "array_subscript_error",
	"subscript_outside_limit": "array_subscript_error",
	"transaction_backed_out":  "transaction_rollback",
	"foreign_key_violation":   "foreign_key_violation",
	"check_violation":         "check_violation",
}

// lookupStandardException returns the PostgreSQL condition name for a
// predefined Oracle exception name, ok=false if name isn't one of the
// standard names (it's either user-declared or OTHERS).
func lookupStandardException(name string) (string, bool) {
	condition, ok := standardExceptions[metadata.Canonicalize(name)]
	return condition, ok
}

// pragmaSQLState implements §4.9's PRAGMA EXCEPTION_INIT formula:
// 'P' + lpad(NN, 4, '0'), where NN is the (positive) Oracle error number's
// last four digits, so -20055 maps to P0055 and -20999 to P0999.
func pragmaSQLState(code int) string {
	nn := code % 10000
	if nn < 0 {
		nn = -nn
	}
	digits := [4]byte{'0', '0', '0', '0'}
	s := []byte{}
	n := nn
	for n > 0 && len(s) < 4 {
		s = append([]byte{byte('0' + n%10)}, s...)
		n /= 10
	}
	copy(digits[4-len(s):], s)
	return "P" + string(digits[:])
}

// isOthers reports whether name is the OTHERS handler name.
func isOthers(name string) bool {
	return metadata.Canonicalize(name) == "others"
}
