// Package fixedpoint holds all settlement arithmetic. Monetary values are
// scaled integers with 18 implied decimal places; decimals from the API or
// storage layer are converted once at the boundary and converted back only
// when leaving the matching core. Division truncates toward zero on every
// path so buy and sell settlements can never round differently.
package fixedpoint

import (
	"database/sql/driver"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Scale is the number of implied decimal places.
const Scale = 18

var (
	scaleFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(Scale), nil)
	scaleExp    = int32(-Scale)
)

// Amount is a quantity or monetary value scaled by 1e18.
// The zero value is ready to use and equals zero.
type Amount struct {
	v *big.Int
}

var Zero = Amount{}

func New(i int64) Amount {
	return Amount{v: new(big.Int).Mul(big.NewInt(i), scaleFactor)}
}

// FromRaw wraps an already-scaled integer.
func FromRaw(raw *big.Int) Amount {
	return Amount{v: new(big.Int).Set(raw)}
}

// FromDecimal converts a boundary decimal into a scaled integer,
// truncating anything beyond 18 decimal places.
func FromDecimal(d decimal.Decimal) Amount {
	shifted := d.Shift(Scale).Truncate(0)

	return Amount{v: shifted.BigInt()}
}

// FromString parses a decimal string. Malformed input fails with
// ErrInvalidAmount.
func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return FromDecimal(d), nil
}

func (a Amount) bigint() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}

	return a.v
}

// Raw returns a copy of the underlying scaled integer.
func (a Amount) Raw() *big.Int {
	return new(big.Int).Set(a.bigint())
}

func (a Amount) ToDecimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.bigint(), scaleExp)
}

func (a Amount) String() string {
	return a.ToDecimal().String()
}

func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.bigint(), b.bigint())}
}

func (a Amount) Sub(b Amount) Amount {
	return Amount{v: new(big.Int).Sub(a.bigint(), b.bigint())}
}

// Mul multiplies two scaled values and divides by the scale factor once,
// keeping the result in the same scale. Truncates toward zero.
func (a Amount) Mul(b Amount) Amount {
	p := new(big.Int).Mul(a.bigint(), b.bigint())

	return Amount{v: p.Quo(p, scaleFactor)}
}

// Div divides two scaled values, truncating toward zero.
func (a Amount) Div(b Amount) Amount {
	p := new(big.Int).Mul(a.bigint(), scaleFactor)

	return Amount{v: p.Quo(p, b.bigint())}
}

// MulRatio returns a * num / den in a single widened operation, so the
// only truncation is the final one. Used for proportional fee shares.
func (a Amount) MulRatio(num, den Amount) Amount {
	p := new(big.Int).Mul(a.bigint(), num.bigint())

	return Amount{v: p.Quo(p, den.bigint())}
}

func (a Amount) Neg() Amount {
	return Amount{v: new(big.Int).Neg(a.bigint())}
}

func (a Amount) Cmp(b Amount) int {
	return a.bigint().Cmp(b.bigint())
}

func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

func (a Amount) LessThan(b Amount) bool {
	return a.Cmp(b) < 0
}

func (a Amount) GreaterThan(b Amount) bool {
	return a.Cmp(b) > 0
}

func (a Amount) IsZero() bool {
	return a.bigint().Sign() == 0
}

func (a Amount) IsPositive() bool {
	return a.bigint().Sign() > 0
}

func (a Amount) IsNegative() bool {
	return a.bigint().Sign() < 0
}

func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}

	return b
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	parsed, err := FromString(s)
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

// Value / Scan store amounts as numeric strings in the database.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Amount) Scan(value interface{}) error {
	var s string

	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		*a = New(v)
		return nil
	case float64:
		*a = FromDecimal(decimal.NewFromFloat(v))
		return nil
	case nil:
		*a = Zero
		return nil
	default:
		return fmt.Errorf("fixedpoint: cannot scan %T", value)
	}

	parsed, err := FromString(s)
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}
