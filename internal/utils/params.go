package utils

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParseFloatParam retrieves a float64 value from the provided URL query parameters.
// A missing key yields 0 without error; an unparsable or non-finite value
// yields 0 and an entry in fieldErrors.
func ParseFloatParam(params url.Values, key string, fieldErrors map[string][]string) (float64, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := strings.TrimSpace(params.Get(key))
	if val == "" {
		return 0, fieldErrors
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return 0, fieldErrors
	}
	return f, fieldErrors
}

// ParseNonNegativeFloatParam is ParseFloatParam that also rejects values
// below zero.
func ParseNonNegativeFloatParam(params url.Values, key string, fieldErrors map[string][]string) (float64, map[string][]string) {
	f, fieldErrors := ParseFloatParam(params, key, fieldErrors)
	if f < 0 {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Field %q must be non-negative.", key))
		return 0, fieldErrors
	}
	return f, fieldErrors
}

// ParseQueryParam validates and sanitises a free-text parameter.
func ParseQueryParam(params url.Values, key string, fieldErrors map[string][]string) (string, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}
	val, err := ValidateAndSanitizeQuery(params.Get(key))
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], err.Error())
		return "", fieldErrors
	}
	return val, fieldErrors
}
