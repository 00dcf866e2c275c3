// Package testing holds assertion helpers shared by tests.
package testing

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/go-test/deep"
)

// Assert fails the test if the condition is false.
func Assert(tb testing.TB, condition bool, msg string, v ...interface{}) {
	tb.Helper()
	if !condition {
		tb.Fatalf(msg, v...)
	}
}

// Ok fails the test if an err is not nil.
func Ok(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("unexpected error: %s", err)
	}
}

// Equals fails the test if exp is not equal to act.
func Equals(tb testing.TB, exp, act interface{}) {
	tb.Helper()
	if !reflect.DeepEqual(exp, act) {
		diff := deep.Equal(exp, act)
		tb.Fatalf("exp: %#v\n\ngot: %#v\n\ndiff: %s", exp, act, strings.Join(diff, "\n"))
	}
}

// ErrEquals fails the test if act is nil or act.Error() != exp.
func ErrEquals(tb testing.TB, exp string, act error) {
	tb.Helper()
	if act == nil {
		tb.Fatalf("exp err %q but err was nil", exp)
	}
	if act.Error() != exp {
		tb.Fatalf("exp err: %q but got: %q", exp, act.Error())
	}
}

// ErrContains fails the test if act is nil or act.Error() does not contain
// substr.
func ErrContains(tb testing.TB, substr string, act error) {
	tb.Helper()
	if act == nil {
		tb.Fatalf("exp err to contain %q but err was nil", substr)
	}
	if !strings.Contains(act.Error(), substr) {
		tb.Fatalf("exp err to contain %q but was: %q", substr, act.Error())
	}
}

// TempDir creates a temporary directory and returns its path along with a
// cleanup function to be called via defer.
func TempDir(t *testing.T) (string, func()) {
	tmpDir, err := os.MkdirTemp("", "")
	Ok(t, err)
	return tmpDir, func() {
		os.RemoveAll(tmpDir) // nolint: errcheck
	}
}

// Contains is a convenience wrapper asserting that s contains substr.
func Contains(tb testing.TB, substr string, s string) {
	tb.Helper()
	if !strings.Contains(s, substr) {
		tb.Fatalf(fmt.Sprintf("exp %q to contain %q", s, substr))
	}
}
