package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

// dateLayouts are tried in order by ParseDate. Values without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses the date formats accepted by the availability schemas.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

func validate() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		}); err != nil {
			panic(err)
		}
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			a := sl.Current().Interface().(AvailabilityCreate)
			checkDateOrder(sl, a.StartDate, a.EndDate)
		}, AvailabilityCreate{})
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			a := sl.Current().Interface().(AvailabilityUpdate)
			checkDateOrder(sl, a.StartDate, a.EndDate)
		}, AvailabilityUpdate{})
		engine = v
	})
	return engine
}

// checkDateOrder reports endDate when both dates parse and start is not before end.
func checkDateOrder(sl validator.StructLevel, start, end *string) {
	if start == nil || end == nil {
		return
	}
	s, errStart := ParseDate(*start)
	e, errEnd := ParseDate(*end)
	if errStart != nil || errEnd != nil {
		return
	}
	if !s.Before(e) {
		sl.ReportError(*end, "endDate", "EndDate", "date_order", "")
	}
}

// Struct validates a decoded schema and returns its issues, if any.
func Struct(v any) []Issue {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{Code: CodeCustom, Path: []string{}, Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, issueFor(fe))
	}
	return issues
}

// Decode reads a JSON object from body into a T, normalises and validates it.
// Field problems are returned as *Error; an unreadable body wraps ErrMalformedBody.
func Decode[T any](body io.Reader) (*T, error) {
	var payload T
	var issues []Issue

	dec := json.NewDecoder(body)
	if err := dec.Decode(&payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field == "" {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
		issues = append(issues, typeIssue(typeErr))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after JSON object")
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	if n, ok := any(&payload).(Normalizer); ok {
		n.Normalize()
	}

	for _, issue := range Struct(&payload) {
		if len(issues) > 0 && issue.Field() == issues[0].Field() {
			// the field was left empty by the type mismatch already reported
			continue
		}
		issues = append(issues, issue)
	}

	if len(issues) > 0 {
		return nil, &Error{Issues: issues}
	}
	return &payload, nil
}

func issueFor(fe validator.FieldError) Issue {
	path := fieldPath(fe.Namespace())
	issue := Issue{Path: path}

	switch fe.Tag() {
	case "required":
		issue.Code = CodeInvalidType
		issue.Expected = jsType(fe.Type())
		issue.Received = "undefined"
		issue.Message = "Required"
	case "min":
		issue.Code = CodeTooSmall
		issue.Message = fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
	case "gt":
		issue.Code = CodeTooSmall
		issue.Message = fmt.Sprintf("Number must be greater than %s", fe.Param())
	case "oneof":
		options := strings.Fields(fe.Param())
		quoted := make([]string, len(options))
		for i, o := range options {
			quoted[i] = "'" + o + "'"
		}
		issue.Code = CodeInvalidEnumValue
		issue.Received = fmt.Sprint(indirect(fe.Value()))
		issue.Message = fmt.Sprintf("Invalid enum value. Expected %s, received '%s'",
			strings.Join(quoted, " | "), issue.Received)
	case "isodate":
		issue.Code = CodeInvalidDate
		issue.Message = "Invalid date"
	case "date_order":
		issue.Code = CodeCustom
	default:
		issue.Code = CodeInvalidString
		issue.Message = fmt.Sprintf("Invalid value (%s)", fe.Tag())
	}

	if msg, ok := messages[issue.Field()+"."+fe.Tag()]; ok {
		issue.Message = msg
	}
	return issue
}

func typeIssue(typeErr *json.UnmarshalTypeError) Issue {
	received, _, _ := strings.Cut(typeErr.Value, " ")
	if received == "bool" {
		received = "boolean"
	}
	expected := jsType(typeErr.Type)

	path := strings.Split(typeErr.Field, ".")
	if expected == "number" && received == "number" && isInteger(typeErr.Type) {
		literal := strings.TrimPrefix(typeErr.Value, "number ")
		if !strings.ContainsAny(literal, ".eE") {
			return rangeIssue(typeErr.Type, literal, path)
		}
		expected, received = "integer", "float"
	}

	return Issue{
		Code:     CodeInvalidType,
		Expected: expected,
		Received: received,
		Path:     path,
		Message:  fmt.Sprintf("Expected %s, received %s", expected, received),
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) []string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		return parts[1:]
	}
	return parts
}

func jsType(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	}
	return "object"
}

// rangeIssue reports a whole number that does not fit the target integer type.
func rangeIssue(t reflect.Type, literal string, path []string) Issue {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	bits := uint(t.Bits())
	if strings.HasPrefix(literal, "-") {
		low := "0"
		if t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64 {
			low = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), bits-1)).String()
		}
		return Issue{
			Code:    CodeTooSmall,
			Path:    path,
			Message: fmt.Sprintf("Number must be greater than or equal to %s", low),
		}
	}
	if t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64 {
		bits--
	}
	high := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	return Issue{
		Code:    CodeTooBig,
		Path:    path,
		Message: fmt.Sprintf("Number must be less than or equal to %s", high.String()),
	}
}

func isInteger(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
