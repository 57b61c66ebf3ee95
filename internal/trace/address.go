package trace

import (
	"strconv"
	"strings"

	"github.com/Borislavv/go-cra-sim/internal/event"
)

// parseAddressPenalties reads memory-access traces with penalty columns:
// `<op> <hex_addr> <instr_gap> <hit_penalty> <miss_penalty>`,
// e.g. `s 0x1fffff50 1 200 1200`. The key is the accessed address.
func parseAddressPenalties(fields []string) (*event.AccessEvent, error) {
	addr := strings.TrimPrefix(fields[1], "0x")
	key, err := strconv.ParseUint(addr, 16, 64)
	if err != nil {
		return nil, err
	}
	hitPenalty, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return nil, err
	}
	missPenalty, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return nil, err
	}
	return event.ForPenalties(key, hitPenalty, missPenalty), nil
}
