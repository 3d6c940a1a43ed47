// Package gain converts between linear amplitude and decibels.
package gain

import "math"

// MinDB is the floor returned for silence
const MinDB = -120.0

// LinearToDb converts a linear amplitude to decibels, MinDB for values <= 0
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return math.Max(MinDB, 20*math.Log10(linear))
}

// DbToLinear converts decibels to a linear amplitude, 0 at or below MinDB
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// DbToLinear32 is DbToLinear for float32 gains
func DbToLinear32(db float64) float32 {
	return float32(DbToLinear(db))
}
