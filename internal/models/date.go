package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// NewDate returns the given calendar date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as YYYY-MM-DD, which every supported driver accepts for DATE columns.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan accepts time.Time (mysql parseTime, pgx) as well as text (sqlite).
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanText(s string) error {
	if len(s) < len(DateLayout) {
		return fmt.Errorf("invalid date %q", s)
	}
	parsed, err := ParseDate(s[:len(DateLayout)])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType keeps gorm from treating the embedded time.Time as a struct.
func (Date) GormDataType() string {
	return "date"
}
