package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"taskpad/domain"
)

var errInvalidBody = domain.NewError(domain.ErrValidation, "Invalid JSON body")

// decodeBody reads a single JSON value into dst, rejecting unknown fields.
func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseDueDate accepts RFC 3339 or a zone-less local datetime, read as UTC.
func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewError(domain.ErrValidation, "Invalid dueDate")
}

// optionalDueDate maps a missing, null or empty dueDate to nil.
func optionalDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDueDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func fieldError(name, kind string) error {
	return domain.NewError(domain.ErrValidation, fmt.Sprintf("%s must be %s", name, kind))
}

// decodePatch reads a PUT /tasks/:id body. Each key is type-checked on its
// own so a JSON null can be told apart from a missing key.
func decodePatch(c echo.Context) (domain.TaskPatch, error) {
	var raw map[string]any
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return domain.TaskPatch{}, errInvalidBody
	}

	var p domain.TaskPatch
	for key, v := range raw {
		switch key {
		case "text":
			s, ok := v.(string)
			if !ok {
				return domain.TaskPatch{}, fieldError("text", "a string")
			}
			p.Text = &s
		case "done":
			b, ok := v.(bool)
			if !ok {
				return domain.TaskPatch{}, fieldError("done", "a boolean")
			}
			p.Done = &b
		case "dueDate":
			if v == nil {
				p.ClearDueDate = true
				continue
			}
			s, ok := v.(string)
			if !ok {
				return domain.TaskPatch{}, fieldError("dueDate", "a string or null")
			}
			if strings.TrimSpace(s) == "" {
				p.ClearDueDate = true
				continue
			}
			t, err := parseDueDate(s)
			if err != nil {
				return domain.TaskPatch{}, err
			}
			p.DueDate = &t
		case "order":
			n, err := asInt(v)
			if err != nil {
				return domain.TaskPatch{}, fieldError("order", "an integer")
			}
			p.Order = &n
		default:
			return domain.TaskPatch{}, domain.NewError(domain.ErrValidation, fmt.Sprintf("Unknown field %s", key))
		}
	}
	return p, nil
}

func asInt(v any) (int, error) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, errors.New("not a number")
	}
	n, err := num.Int64()
	if err != nil {
		return 0, err
	}
	if int64(int(n)) != n {
		return 0, errors.New("out of range")
	}
	return int(n), nil
}
