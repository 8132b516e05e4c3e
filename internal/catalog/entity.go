// AngelaMos | 2026
// entity.go

package catalog

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AttributeKind selects which user-owned attribute collection an
// operation targets. Tags and authors share one shape and one contract;
// only their tables differ.
type AttributeKind string

const (
	KindTag    AttributeKind = "tag"
	KindAuthor AttributeKind = "author"
)

func (k AttributeKind) String() string {
	return string(k)
}

// Attribute is a tag or author owned by a single user and linked to any
// number of that user's books.
type Attribute struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	UserID string `db:"user_id"`
}

type Book struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Pages     int       `db:"pages"`
	Year      int       `db:"year"`
	Price     Price     `db:"price_cents"`
	Link      string    `db:"link"`
	CoverPath *string   `db:"cover_path"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Link sets, loaded alongside the row. No duplicates.
	TagIDs    []int64 `db:"-"`
	AuthorIDs []int64 `db:"-"`
}

// Price is an amount of money in cents. Storing cents avoids float
// precision drift; JSON round-trips as a two-decimal number.
type Price int64

const maxPriceCents = 99999

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d.%02d", p/100, p%100)), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))

	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

// ParsePrice reads a non-negative decimal amount with at most two
// fraction digits.
func ParsePrice(s string) (Price, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "-") {
		return 0, fmt.Errorf("price %q must not be negative", s)
	}

	whole, frac, hasFrac := strings.Cut(s, ".")

	cents, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	cents *= 100

	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("price %q must have at most two decimal places", s)
		}
		fracVal, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		if len(frac) == 1 {
			fracVal *= 10
		}
		cents += fracVal
	}

	return Price(cents), nil
}
