package adlibrary

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// AdId identifies a house-ad clip stored in the library.
type AdId uuid.UUID

// NewAdId mints a fresh random ad id.
func NewAdId() AdId {
	return AdId(uuid.New())
}

// ParseAdId parses an ad id from its string form.
func ParseAdId(s string) (AdId, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return AdId{}, errors.Wrapf(err, "adlibrary: parse ad id %q", s)
	}
	return AdId(id), nil
}

func (id AdId) String() string {
	return uuid.UUID(id).String()
}

// Value implements driver.Valuer so AdId can be bound directly in SQL args.
func (id AdId) Value() (driver.Value, error) {
	return id.String(), nil
}

// Scan implements sql.Scanner so AdId can be read back from a TEXT column.
func (id *AdId) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseAdId(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		parsed, err := ParseAdId(string(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("adlibrary: cannot scan %T into AdId", src)
	}
}
