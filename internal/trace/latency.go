package trace

import (
	"math/big"
	"strconv"

	"github.com/Borislavv/go-cra-sim/internal/event"
)

var two64 = new(big.Int).Lsh(big.NewInt(1), 64)

// parseLatencyKey reads a decimal id, folding ids wider than 64 bits by
// XORing the high and low halves.
func parseLatencyKey(id string) (uint64, error) {
	if v, err := strconv.ParseInt(id, 10, 64); err == nil {
		return uint64(v), nil
	}
	n, ok := new(big.Int).SetString(id, 10)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	lo := new(big.Int).Mod(n, two64).Uint64()
	hi := new(big.Int).Mod(new(big.Int).Rsh(n, 64), two64).Uint64()
	return hi ^ lo, nil
}

// parseLatency reads latency traces: `<id> <hit_penalty> <miss_penalty>`.
func parseLatency(fields []string) (*event.AccessEvent, error) {
	key, err := parseLatencyKey(fields[0])
	if err != nil {
		return nil, err
	}
	hitPenalty, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, err
	}
	missPenalty, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, err
	}
	return event.ForPenalties(key, hitPenalty, missPenalty), nil
}
