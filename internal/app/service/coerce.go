package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/ikkim/retail-etl/internal/errors"
)

// coerceInt64 converts a raw JSON scalar to an integer. nil stays nil;
// floats truncate toward zero; numeric strings parse. Anything else is
// a coercion failure.
func coerceInt64(field string, v interface{}) (*int64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return &t, nil
	case int:
		n := int64(t)
		return &n, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, apperrors.Coercion(field, v)
		}
		n := int64(t)
		return &n, nil
	case json.Number:
		return coerceInt64(field, t.String())
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			n := int64(f)
			return &n, nil
		}
		return nil, apperrors.Coercion(field, v)
	default:
		return nil, apperrors.Coercion(field, v)
	}
}

// coerceFloat64 converts a raw JSON scalar to a float. nil stays nil.
func coerceFloat64(field string, v interface{}) (*float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &t, nil
	case int64:
		f := float64(t)
		return &f, nil
	case int:
		f := float64(t)
		return &f, nil
	case json.Number:
		return coerceFloat64(field, t.String())
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f, nil
		}
		return nil, apperrors.Coercion(field, v)
	default:
		return nil, apperrors.Coercion(field, v)
	}
}

// scalarText renders a raw scalar as text. Integral floats drop the
// fractional part so an age of 29 does not become "29.000000".
func scalarText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
