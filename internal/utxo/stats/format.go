package stats

import (
	"math"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
)

// BTC renders a satoshi amount in bitcoin, e.g. "50 BTC".
func BTC(satoshis uint64) string {
	if satoshis > math.MaxInt64 {
		return strconv.FormatUint(satoshis, 10) + " Satoshi"
	}
	return btcutil.Amount(int64(satoshis)).String()
}
