package cra

import (
	"fmt"
	"math"

	"github.com/Borislavv/go-cra-sim/internal/event"
)

// Block is a benefit-bucketed eviction store: resident entries are clustered
// by their delta (miss penalty minus hit penalty) into a small set of ranked
// lists, and victims are chosen by a benefit/recency-weighted rank. It is a
// building block for latency-aware policies the same way LRU lists are for
// classic ones.
//
// Bucket 0 holds negative-delta entries and is always evicted first. Buckets
// 1..maxLists partition the non-negative delta range linearly according to
// the normalization published via SetNormalization.
type Block struct {
	data     map[uint64]*Node
	lists    []*Node
	active   map[int]struct{}
	capacity int
	maxLists int
	k        float64

	currentSize int
	reqCount    int
	resetCount  int
	currOp      uint64
	epoch       uint64

	normalizationBias   float64
	normalizationFactor float64
}

// NewBlock builds an empty block. k controls the recency-vs-benefit
// trade-off of the victim rank, maxLists the number of non-negative benefit
// buckets, capacity the maximum total resident weight.
func NewBlock(k float64, maxLists, capacity int) *Block {
	b := &Block{
		data:       make(map[uint64]*Node),
		lists:      make([]*Node, maxLists+1),
		active:     make(map[int]struct{}),
		capacity:   capacity,
		maxLists:   maxLists,
		k:          k,
		resetCount: capacity,
		currOp:     1,
	}
	for i := 0; i <= maxLists; i++ {
		b.lists[i] = newSentinel(i)
	}
	return b
}

// SetNormalization publishes the (bias, factor) mapping used to bucketize
// deltas. Resident entries are not rebucketed eagerly; they move the next
// time they are touched.
func (b *Block) SetNormalization(bias, factor float64) {
	b.normalizationBias = bias
	b.normalizationFactor = factor
}

// Type names the replacement behavior of this block.
func (b *Block) Type() string {
	if b.maxLists == 1 {
		return "LRU"
	}
	return "LRBB"
}

func (b *Block) Contains(key uint64) bool {
	_, ok := b.data[key]
	return ok
}

// Len is the number of resident entries.
func (b *Block) Len() int {
	return len(b.data)
}

// Size is the total resident weight.
func (b *Block) Size() int {
	return b.currentSize
}

func (b *Block) Capacity() int {
	return b.capacity
}

// bucketFor maps a delta to its benefit bucket under the current
// normalization. The scaling denominator is maxLists+1 with a clamp to
// maxLists, leaving the top bucket a narrower slice of the delta range. While
// no factor is established (factor 0) every non-negative delta maps to
// bucket 1.
func (b *Block) bucketFor(delta float64) int {
	if delta < 0 {
		return 0
	}
	if b.normalizationFactor <= 0 {
		return 1
	}
	raw := ((delta - b.normalizationBias) / b.normalizationFactor) * float64(b.maxLists+1)
	if math.IsNaN(raw) || raw < 1 {
		return 1
	}
	if raw > float64(b.maxLists) {
		return b.maxLists
	}
	return int(raw)
}

// Record replays one access against the block: a miss inserts (evicting as
// needed), a touch of a resident entry adopts the event's penalties and
// relocates or removes the entry. The returned keys were removed from the
// block, either as eviction victims or because the entry's delta turned
// negative. An overweight miss inserts and evicts nothing; it still counts
// as a request toward the age-decay schedule.
func (b *Block) Record(ev *event.AccessEvent) []uint64 {
	old := b.data[ev.Key()]
	b.reqCount++
	if b.reqCount > b.resetCount {
		b.reqCount = 0
		b.epoch++
		b.currOp >>= 1
	}
	if old == nil {
		if ev.Weight() > b.capacity {
			return nil
		}
		return b.evict(ev)
	}
	old.event.UpdateHitPenalty(ev.HitPenalty())
	old.event.UpdateMissPenalty(ev.MissPenalty())
	return b.onAccess(old)
}

// evict makes room for the candidate and inserts it.
func (b *Block) evict(candidate *event.AccessEvent) []uint64 {
	var evictions []uint64
	for b.currentSize+candidate.Weight() > b.capacity {
		victim := b.FindVictim()
		b.detach(victim)
		evictions = append(evictions, victim.key)
	}
	b.AddEntry(candidate)
	return evictions
}

// AddEntry inserts a fresh node for the event into its benefit bucket at the
// MRU position.
func (b *Block) AddEntry(ev *event.AccessEvent) *Node {
	return b.attach(newNode(ev))
}

// AddNode links an existing node (typically migrating from another block)
// into this block, rebucketing it by its current delta.
func (b *Block) AddNode(n *Node) *Node {
	return b.attach(n)
}

func (b *Block) attach(n *Node) *Node {
	index := b.bucketFor(n.event.Delta())
	n.appendToTail(b.lists[index])
	b.active[index] = struct{}{}
	n.touch(b.currOp, b.epoch)
	b.currOp++
	b.data[n.key] = n
	b.currentSize += n.weight
	return n
}

// Remove unlinks and unregisters the entry for key, returning the detached
// node so it can migrate to another block. Returns nil for unknown keys.
func (b *Block) Remove(key uint64) *Node {
	n, ok := b.data[key]
	if !ok {
		return nil
	}
	b.detach(n)
	return n
}

func (b *Block) detach(n *Node) {
	sentinel := n.sentinel
	n.unlink()
	if sentinel.size == 0 {
		delete(b.active, sentinel.index)
	}
	delete(b.data, n.key)
	b.currentSize -= n.weight
}

// FindVictim returns the best eviction candidate. The negative-delta bucket
// is drained first; otherwise the LRU head of every active bucket is scored
// by sign(delta)*|delta|^(age^-k) and the smallest rank wins, ties broken by
// the staler last-op stamp. Calling this on an empty block is a programming
// error.
func (b *Block) FindVictim() *Node {
	if _, ok := b.active[0]; ok {
		if s := b.lists[0]; s.next != s {
			return s.next
		}
	}
	var victim *Node
	minRank := math.MaxFloat64
	for i := 0; i <= b.maxLists; i++ {
		if _, ok := b.active[i]; !ok {
			continue
		}
		s := b.lists[i]
		if s.size == 0 {
			continue
		}
		candidate := s.next
		if candidate.epoch < b.epoch {
			candidate.decayOp(b.epoch)
		}
		rank := b.rank(candidate)
		if victim == nil || rank < minRank ||
			(rank == minRank && float64(candidate.lastOp)/float64(b.currOp) < float64(victim.lastOp)/float64(b.currOp)) {
			minRank = rank
			victim = candidate
		}
	}
	if victim == nil {
		panic(fmt.Sprintf("cra: victim is nil (maxLists=%d active=%v size=%d)", b.maxLists, b.active, b.currentSize))
	}
	return victim
}

// rank scores a victim candidate. The exponent age^-k lies in (0,1]: a
// just-touched node scores its full delta, an old one flattens toward the
// sign of its delta.
func (b *Block) rank(n *Node) float64 {
	age := 1.0
	if b.currOp > n.lastOp {
		age = float64(b.currOp - n.lastOp)
	}
	delta := n.event.Delta()
	return sign(delta) * math.Pow(math.Abs(delta), math.Pow(age, -b.k))
}

// onAccess relocates a touched resident. Entries whose delta turned negative
// are removed outright; the rest are rebucketed under the current
// normalization and moved to their bucket's MRU position.
func (b *Block) onAccess(n *Node) []uint64 {
	if n.event.Delta() < 0 {
		key := n.key
		b.detach(n)
		return []uint64{key}
	}
	index := b.bucketFor(n.event.Delta())
	if index != n.sentinel.index {
		sentinel := n.sentinel
		n.unlink()
		if sentinel.size == 0 {
			delete(b.active, sentinel.index)
		}
		n.appendToTail(b.lists[index])
		b.active[index] = struct{}{}
	} else {
		n.MoveToTail()
	}
	n.touch(b.currOp, b.epoch)
	b.currOp++
	return nil
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
