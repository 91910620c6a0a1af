// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtc

import "fmt"

// A FieldError describes a calendar field that failed validation.
type FieldError struct {
	Field string
	Value int
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("rtc: invalid %s (got=%d)", e.Field, e.Value)
}

// Validate checks t for internal consistency: field ranges, days-in-month
// and the Gregorian leap-year rule. It reports the first failing field.
func (t Time) Validate() error {
	if t.Sec > 59 {
		return &FieldError{Field: "seconds", Value: int(t.Sec)}
	}
	if t.Min > 59 {
		return &FieldError{Field: "minutes", Value: int(t.Min)}
	}
	if t.Hour > 23 {
		return &FieldError{Field: "hours", Value: int(t.Hour)}
	}
	if t.Year < 2000 || t.Year > 2199 {
		return &FieldError{Field: "year", Value: int(t.Year)}
	}

	var days uint8
	switch t.Month {
	case 1, 3, 5, 7, 8, 10, 12:
		days = 31
	case 4, 6, 9, 11:
		days = 30
	case 2:
		days = 28
		if isLeap(t.Year) {
			days = 29
		}
	default:
		return &FieldError{Field: "month", Value: int(t.Month)}
	}
	if t.Day < 1 || t.Day > days {
		return &FieldError{Field: "day", Value: int(t.Day)}
	}

	return nil
}

func isLeap(year uint16) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}
