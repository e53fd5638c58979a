package repository

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// costFromNumeric converts a nullable numeric(12,0) cost column to *int64.
// NULL maps to nil. Fractional digits are truncated.
func costFromNumeric(n pgtype.Numeric) (*int64, error) {
	if !n.Valid {
		return nil, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return nil, fmt.Errorf("cost is not a finite number")
	}

	// pgtype.Numeric stores value as Int * 10^Exp
	bi := new(big.Int).Set(n.Int)
	if n.Exp > 0 {
		bi.Mul(bi, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil))
	} else if n.Exp < 0 {
		bi.Quo(bi, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil))
	}

	if !bi.IsInt64() {
		return nil, fmt.Errorf("cost %s overflows int64", bi.String())
	}
	v := bi.Int64()
	return &v, nil
}

// costToNumeric converts an optional cost for writing. nil becomes SQL NULL.
func costToNumeric(cost *int64) pgtype.Numeric {
	if cost == nil {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{
		Int:              big.NewInt(*cost),
		Exp:              0,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
