// Package coins holds the fixed coin denomination set and the greedy change
// decomposition used across the vending API.
package coins

// Denominations lists the accepted coin values, largest first. The set is
// canonical, so the greedy breakdown below is also the minimal one.
var Denominations = [...]int64{100, 50, 20, 10, 5}

// Smallest is the smallest accepted coin. Product costs must be a multiple
// of it so every reachable change amount decomposes without a remainder.
const Smallest int64 = 5

// IsDenomination reports whether v is one of the accepted coin values.
func IsDenomination(v int64) bool {
	for _, d := range Denominations {
		if v == d {
			return true
		}
	}
	return false
}

// MakeChange breaks amount into coins, largest first. Denominations with a
// zero count are left out of the map. The second result is whatever could
// not be expressed in coins (0 for any multiple of Smallest).
// Callers must not pass a negative amount.
func MakeChange(amount int64) (map[int64]int64, int64) {
	change := make(map[int64]int64)
	for _, d := range Denominations {
		if count := amount / d; count > 0 {
			change[d] = count
			amount %= d
		}
	}
	return change, amount
}
