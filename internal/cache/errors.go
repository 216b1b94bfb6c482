// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"github.com/joomcode/errorx"
)

var (
	ErrorsNamespace = errorx.NewNamespace("cache")
	ExtractionError = ErrorsNamespace.NewType("extraction_error")

	packageProperty = errorx.RegisterPrintableProperty("package")
	sourceProperty  = errorx.RegisterPrintableProperty("source")
)

const extractionErrorMsg = "failed to extract package [ package = '%s', source = '%s' ]"

// NewExtractionError builds a typed error for a package whose archive could
// not be materialized.
func NewExtractionError(cause error, pkg, source string) *errorx.Error {
	if cause == nil {
		return ExtractionError.New(extractionErrorMsg, pkg, source).
			WithProperty(packageProperty, pkg).
			WithProperty(sourceProperty, source)
	}
	return ExtractionError.Wrap(cause, extractionErrorMsg, pkg, source).
		WithProperty(packageProperty, pkg).
		WithProperty(sourceProperty, source)
}
