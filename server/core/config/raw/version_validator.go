package raw

import (
	version "github.com/hashicorp/go-version"
	"github.com/pkg/errors"
)

// VersionValidator validates that a version field is a parsable semver.
func VersionValidator(value interface{}) error {
	strPtr, _ := value.(*string)
	if strPtr == nil {
		return nil
	}
	_, err := version.NewVersion(*strPtr)
	if err != nil {
		return errors.Wrapf(err, "version %q could not be parsed", *strPtr)
	}
	return nil
}
