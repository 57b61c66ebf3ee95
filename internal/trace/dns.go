package trace

import (
	"strconv"
	"sync"
	"unsafe"

	"github.com/zeebo/xxh3"

	"github.com/Borislavv/go-cra-sim/internal/event"
)

var hasherPool = sync.Pool{New: func() any { return xxh3.New() }}

// hashName folds a lookup name into a 64-bit key.
func hashName(name string) uint64 {
	hasher := hasherPool.Get().(*xxh3.Hasher)
	hasher.Reset()
	_, _ = hasher.Write(unsafe.Slice(unsafe.StringData(name), len(name)))
	key := hasher.Sum64()
	hasherPool.Put(hasher)
	return key
}

// parseDNS reads DNS lookup-time traces: `<name> <hit_penalty> <miss_penalty>`.
func parseDNS(fields []string) (*event.AccessEvent, error) {
	hitPenalty, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, err
	}
	missPenalty, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, err
	}
	return event.ForPenalties(hashName(fields[0]), hitPenalty, missPenalty), nil
}
