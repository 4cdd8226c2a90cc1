package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrEmptyBody            = errors.New("request body is empty")
	ErrUnsupportedMediaType = errors.New("content type must be application/json")
	ErrInvalidLimit         = errors.New("invalid limit")
	ErrInvalidOffset        = errors.New("invalid offset")
)

// FieldTypeError reports a JSON field whose value has the wrong type.
type FieldTypeError struct {
	Field    string
	Expected string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q must be %s", e.Field, e.Expected)
}

func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &FieldTypeError{Field: typeErr.Field, Expected: describeKind(typeErr.Type.String())}
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

func describeKind(goType string) string {
	switch {
	case strings.HasPrefix(goType, "[]"):
		return "an array"
	case strings.Contains(goType, "int"):
		return "an integer"
	case strings.Contains(goType, "float"):
		return "a number"
	case strings.Contains(goType, "bool"):
		return "a boolean"
	case strings.Contains(goType, "string"):
		return "a string"
	default:
		return "an object"
	}
}

// RequireJSON rejects requests whose declared media type is not application/json.
func RequireJSON(r *http.Request) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return ErrUnsupportedMediaType
	}
	return nil
}

func ValidationDetails(errs validator.ValidationErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field()] = err.Tag()
	}
	return details
}

// ParseLimitOffset reads paging parameters. A limit that is absent, not a
// number or zero falls back to defaultLimit and is clamped to maxLimit; an
// offset that is absent or not a number falls back to 0. Negative values are
// rejected.
func ParseLimitOffset(values url.Values, defaultLimit, maxLimit int64) (int64, int64, error) {
	return parseLimitOffset(values, defaultLimit, maxLimit, true)
}

// LimitOffset is the lenient form of ParseLimitOffset: negative values fall
// back to the defaults like any other unusable input.
func LimitOffset(values url.Values, defaultLimit, maxLimit int64) (int64, int64) {
	limit, offset, _ := parseLimitOffset(values, defaultLimit, maxLimit, false)
	return limit, offset
}

func parseLimitOffset(values url.Values, defaultLimit, maxLimit int64, strict bool) (int64, int64, error) {
	limit := defaultLimit
	offset := int64(0)

	if rawLimit := strings.TrimSpace(values.Get("limit")); rawLimit != "" {
		if parsed, err := strconv.ParseInt(rawLimit, 10, 64); err == nil {
			if parsed < 0 && strict {
				return 0, 0, ErrInvalidLimit
			}
			if parsed > 0 {
				limit = parsed
			}
		}
	}

	if rawOffset := strings.TrimSpace(values.Get("offset")); rawOffset != "" {
		if parsed, err := strconv.ParseInt(rawOffset, 10, 64); err == nil {
			if parsed < 0 && strict {
				return 0, 0, ErrInvalidOffset
			}
			if parsed > 0 {
				offset = parsed
			}
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	return limit, offset, nil
}
