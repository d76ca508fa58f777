package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidMoney возвращается при разборе некорректной денежной суммы.
var ErrInvalidMoney = errors.New("invalid money amount")

// Money хранит денежную сумму в копейках (центах).
// Наружу сумма выходит числом с двумя знаками после запятой.
type Money int64

// MaxMoney наибольшая по модулю сумма, которую вмещает NUMERIC(10,2): 99999999.99.
const MaxMoney Money = 9_999_999_999

// ParseMoney разбирает десятичную строку вида "12.34".
// Третий и последующие знаки после запятой округляются половиной вверх.
// Суммы больше MaxMoney по модулю отклоняются с ErrInvalidMoney.
func ParseMoney(s string) (Money, error) {
	const op = "models.ParseMoney"
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidMoney)
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidMoney)
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidMoney)
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || whole > int64(MaxMoney)/100 {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidMoney)
	}

	frac := fracPart + "000"
	cents, _ := strconv.ParseInt(frac[:2], 10, 64)
	if frac[2] >= '5' {
		cents++
	}
	total := whole*100 + cents
	if total > int64(MaxMoney) {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidMoney)
	}
	if neg {
		total = -total
	}
	return Money(total), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Cents возвращает сумму в минимальных единицах.
func (m Money) Cents() int64 { return int64(m) }

// Float64 возвращает сумму в основных единицах.
func (m Money) Float64() float64 { return float64(m) / 100 }

func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON кодирует сумму как JSON-число с двумя знаками после запятой.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON принимает как число, так и строку с числом.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Scan читает значение колонки NUMERIC(10,2).
func (m *Money) Scan(src any) error {
	const op = "models.Money.Scan"
	switch v := src.(type) {
	case nil:
		*m = 0
		return nil
	case string:
		parsed, err := ParseMoney(v)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		*m = parsed
	case []byte:
		parsed, err := ParseMoney(string(v))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		*m = parsed
	case float64:
		parsed, err := ParseMoney(strconv.FormatFloat(v, 'f', -1, 64))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		*m = parsed
	case int64:
		*m = Money(v * 100)
	default:
		return fmt.Errorf("%s: unsupported type %T", op, src)
	}
	return nil
}

// Value передаёт сумму в базу в виде десятичной строки.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}
