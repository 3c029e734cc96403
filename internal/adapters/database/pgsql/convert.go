package pgsql

import (
	"fmt"
	"time"

	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Typed accessors over generic rows. pgx hands back driver-level values
// (pgtype.Numeric for NUMERIC columns, int64 for bigint, time.Time for
// date/timestamptz); these helpers normalize them for the domain layer.

func rowInt64(row portsrepo.Row, column string) (int64, error) {
	switch v := row[column].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case nil:
		return 0, fmt.Errorf("column %s is null", column)
	default:
		return 0, fmt.Errorf("column %s has unexpected type %T", column, v)
	}
}

func rowString(row portsrepo.Row, column string) (string, error) {
	switch v := row[column].(type) {
	case string:
		return v, nil
	case nil:
		return "", fmt.Errorf("column %s is null", column)
	default:
		return "", fmt.Errorf("column %s has unexpected type %T", column, v)
	}
}

func rowTime(row portsrepo.Row, column string) (time.Time, error) {
	switch v := row[column].(type) {
	case time.Time:
		return v, nil
	case nil:
		return time.Time{}, fmt.Errorf("column %s is null", column)
	default:
		return time.Time{}, fmt.Errorf("column %s has unexpected type %T", column, v)
	}
}

// rowDecimal reads a NUMERIC column. A null column yields decimal zero,
// which is how optional rate fields (manual overrides) are modeled.
func rowDecimal(row portsrepo.Row, column string) (decimal.Decimal, error) {
	switch v := row[column].(type) {
	case nil:
		return decimal.Zero, nil
	case pgtype.Numeric:
		if !v.Valid {
			return decimal.Zero, nil
		}
		value, err := v.Value()
		if err != nil {
			return decimal.Zero, fmt.Errorf("column %s: %w", column, err)
		}
		switch text := value.(type) {
		case string:
			return decimal.NewFromString(text)
		case []byte:
			return decimal.NewFromString(string(text))
		default:
			return decimal.Zero, fmt.Errorf("column %s has unexpected driver value %T", column, value)
		}
	case string:
		return decimal.NewFromString(v)
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("column %s has unexpected type %T", column, v)
	}
}
