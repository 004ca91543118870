package validation

import (
	"fmt"

	"github.com/retailcast/demand-forecast/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s, or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateHorizon checks that a forecast horizon falls within the supported
// range of weeks.
func ValidateHorizon(horizonWeeks int) error {
	if horizonWeeks < constants.MinHorizonWeeks || horizonWeeks > constants.MaxHorizonWeeks {
		return NewInvalidArgumentError("horizonWeeks", "must be between %d and %d, got %d",
			constants.MinHorizonWeeks, constants.MaxHorizonWeeks, horizonWeeks)
	}
	return nil
}
