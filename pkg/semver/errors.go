// SPDX-License-Identifier: Apache-2.0

package semver

import (
	"github.com/joomcode/errorx"
)

var (
	ErrorsNamespace = errorx.NewNamespace("semver")
	ParseError      = ErrorsNamespace.NewType("parse_error")

	textProperty = errorx.RegisterPrintableProperty("text")
)

const parseErrorMsg = "failed to parse version [ text = '%s' ]"

// NewParseError builds a typed parse error carrying the offending text.
// The cause may be nil when the text simply does not match the grammar.
func NewParseError(cause error, text string) *errorx.Error {
	if cause == nil {
		return ParseError.New(parseErrorMsg, text).WithProperty(textProperty, text)
	}
	return ParseError.Wrap(cause, parseErrorMsg, text).WithProperty(textProperty, text)
}

// CheckVersionRequirements verifies that a version lies within the inclusive
// [minVersion, maxVersion] range. Empty bounds are not enforced.
func CheckVersionRequirements(version, minVersion, maxVersion string) error {
	if version == "" {
		return nil
	}

	v, err := Parse(version)
	if err != nil {
		return err
	}

	if minVersion != "" {
		lo, err := Parse(minVersion)
		if err != nil {
			return err
		}
		if v.LessThan(lo) {
			return errorx.IllegalState.New(
				"version %q is less than minimum required version %q", version, minVersion)
		}
	}

	if maxVersion != "" {
		hi, err := Parse(maxVersion)
		if err != nil {
			return err
		}
		if v.GreaterThan(hi) {
			return errorx.IllegalState.New(
				"version %q is greater than maximum required version %q", version, maxVersion)
		}
	}

	return nil
}
