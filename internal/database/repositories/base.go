package repositories

import "database/sql"

// NullFloat converts a nullable column to a *float64
func NullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// FloatOrNull converts a *float64 to a driver-friendly value
func FloatOrNull(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
