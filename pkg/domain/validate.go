package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationError reports the first rule a candidate car payload violates.
// The reason is safe to return to the client verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Year must be 19xx or 20xx; month and day ranges are bounded here and the
// calendar itself is checked by the round-trip below.
var dayOfCommissionPattern = regexp.MustCompile(`^(?:19|20)\d\d-(?:0[1-9]|1[0-2])-(?:0[1-9]|[12][0-9]|3[01])$`)

// SanitizeCar turns an untrusted decoded JSON payload into a well-formed Car.
// It is a pure function: rules are checked in a fixed order and the first
// violation wins. A caller-supplied id is carried through unchanged; assigning
// or checking id uniqueness is the store's and handler's concern.
func SanitizeCar(payload any) (Car, error) {
	obj, ok := payload.(map[string]any)
	if !ok || obj == nil {
		return Car{}, &ValidationError{Reason: "Request body is invalid. A Car object must be given."}
	}

	brandValue, present := obj["brand"]
	if !present || brandValue == nil || brandValue == "" {
		return Car{}, &ValidationError{Reason: "Car brand should be defined."}
	}
	brand, isText := brandValue.(string)
	if !isText || !IsValidBrand(brand) {
		return Car{}, validationErrorf("Car brand is invalid: %v", brandValue)
	}

	model := coerceText(obj["model"])
	if model == "" {
		return Car{}, &ValidationError{Reason: "Car model should be defined."}
	}

	electric, isBool := obj["electric"].(bool)
	if !isBool {
		return Car{}, &ValidationError{Reason: "Electric property should be a Boolean."}
	}

	fuelUse, ok := toFiniteFloat(obj["fuelUse"])
	if !ok {
		return Car{}, &ValidationError{Reason: "Fuel use should be given as a floating-point number."}
	}
	if electric && fuelUse != 0 {
		return Car{}, &ValidationError{Reason: "Fuel consumption should be 0 for electric cars."}
	}
	if !electric && fuelUse <= 0 {
		return Car{}, &ValidationError{Reason: "Fuel consumption should be greater than 0."}
	}

	owner, isText := obj["owner"].(string)
	if !isText || utf8.RuneCountInString(owner) < 3 || !strings.Contains(owner, " ") {
		return Car{}, &ValidationError{Reason: "Owner should have valid first and lastnames."}
	}

	day, isText := obj["dayOfCommission"].(string)
	if !isText || !isValidDate(day) {
		return Car{}, validationErrorf("The given date is invalid: %v", obj["dayOfCommission"])
	}

	id, ok := toRecordID(obj["id"])
	if !ok {
		return Car{}, &ValidationError{Reason: "Car id should be a non-negative integer."}
	}

	return Car{
		ID:              id,
		Brand:           brand,
		Model:           model,
		FuelUse:         fuelUse,
		Owner:           owner,
		DayOfCommission: day,
		Electric:        electric,
	}, nil
}

// coerceText renders scalar JSON values as text; nil and structured values
// become empty.
func coerceText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// toFiniteFloat accepts JSON numbers and numeric strings, rejecting NaN and
// infinities.
func toFiniteFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toRecordID reads an optional id field. When present it must be a
// non-negative whole number. Absent (or null) maps to -1: stored ids are
// never negative, so a payload without an id can never address an existing
// record on the update path, while create overwrites the id regardless.
func toRecordID(v any) (int, bool) {
	if v == nil {
		return -1, true
	}
	f, isNumber := v.(float64)
	if !isNumber || f != math.Trunc(f) || f < 0 {
		return 0, false
	}
	return int(f), true
}

// isValidDate checks the YYYY-MM-DD shape and that the components denote a
// real calendar day: rebuilding the date from its parsed year/month/day must
// reproduce the same components (rejects e.g. 2021-02-30, which normalizes
// to March).
func isValidDate(s string) bool {
	if !dayOfCommissionPattern.MatchString(s) {
		return false
	}
	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && int(d.Month()) == month && d.Day() == day
}
