// Package models defines the core data types for the address book.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PhoneLen is the exact number of decimal digits in a phone number.
const PhoneLen = 10

// DateLayout is the day/month/year layout birthdays are stored and shown in.
const DateLayout = "02/01/2006"

// parseLayout also accepts unpadded day and month, e.g. "1/2/1990".
const parseLayout = "2/1/2006"

// ErrPhoneFormat is returned when a phone is not exactly PhoneLen digits.
var ErrPhoneFormat = errors.New("phone number must consist of 10 digits")

// ErrDateFormat is returned when a birthday is not a valid DD/MM/YYYY date.
var ErrDateFormat = errors.New("birthday must be a valid date in DD/MM/YYYY format")

// Contact is a single address book entry keyed by Name.
type Contact struct {
	Name     string
	Phone    string
	Birthday *Date // nil when no birthday is set
}

// Line renders the contact as "name: phone[, Birthday: DD/MM/YYYY]".
func (c *Contact) Line() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteString(": ")
	sb.WriteString(c.Phone)
	if c.Birthday != nil {
		sb.WriteString(", Birthday: ")
		sb.WriteString(c.Birthday.String())
	}
	return sb.String()
}

// Clone returns a deep copy of c.
func (c *Contact) Clone() *Contact {
	out := *c
	if c.Birthday != nil {
		b := *c.Birthday
		out.Birthday = &b
	}
	return &out
}

// ValidatePhone reports whether phone is exactly PhoneLen ASCII digits.
func ValidatePhone(phone string) error {
	if len(phone) != PhoneLen {
		return fmt.Errorf("%w: got %q", ErrPhoneFormat, phone)
	}
	for i := range len(phone) {
		if phone[i] < '0' || phone[i] > '9' {
			return fmt.Errorf("%w: got %q", ErrPhoneFormat, phone)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Date
// ---------------------------------------------------------------------------

// Date is a calendar date without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a day/month/year string such as "31/12/1999".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(parseLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: got %q", ErrDateFormat, s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// String formats d as DD/MM/YYYY.
func (d Date) String() string {
	return d.In(time.UTC).Format(DateLayout)
}

// AppendText implements [encoding.TextAppender].
func (d Date) AppendText(b []byte) ([]byte, error) {
	return d.In(time.UTC).AppendFormat(b, DateLayout), nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Date) MarshalText() ([]byte, error) {
	return d.AppendText(nil)
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
