package cra

import (
	"github.com/Borislavv/go-cra-sim/internal/event"
)

// Segment tags which region of a segmented policy currently holds a node.
// Blocks themselves ignore the tag; segmented policies read it instead of
// probing every block for membership.
type Segment uint8

const (
	SegmentNone Segment = iota
	SegmentWindow
	SegmentProbation
	SegmentProtected
)

func (s Segment) String() string {
	switch s {
	case SegmentWindow:
		return "window"
	case SegmentProbation:
		return "probation"
	case SegmentProtected:
		return "protected"
	default:
		return "none"
	}
}

// Node is a resident entry on one of a block's benefit lists. Lists are
// circular and sentinel-anchored: sentinel.next is the LRU position,
// sentinel.prev the MRU tail. A node keeps its identity (event, lastOp) when
// it migrates between blocks; only the links and sentinel change.
type Node struct {
	sentinel *Node
	prev     *Node
	next     *Node

	// sentinel-only bookkeeping
	size  int
	index int

	key     uint64
	weight  int
	event   *event.AccessEvent
	lastOp  uint64
	epoch   uint64
	segment Segment
}

// newSentinel creates the anchor of one benefit list.
func newSentinel(index int) *Node {
	s := &Node{index: index, lastOp: 1}
	s.sentinel = s
	s.prev = s
	s.next = s
	return s
}

// newNode creates an unlinked resident entry for the event.
func newNode(ev *event.AccessEvent) *Node {
	return &Node{key: ev.Key(), weight: ev.Weight(), event: ev, lastOp: 1}
}

func (n *Node) Key() uint64 {
	return n.key
}

func (n *Node) Weight() int {
	return n.weight
}

func (n *Node) Event() *event.AccessEvent {
	return n.event
}

// ListIndex is the benefit bucket the node is currently linked into.
func (n *Node) ListIndex() int {
	return n.sentinel.index
}

func (n *Node) Segment() Segment {
	return n.segment
}

func (n *Node) SetSegment(s Segment) {
	n.segment = s
}

// MoveToTail relocates the node to the MRU position of its current list
// without touching the operation counter.
func (n *Node) MoveToTail() {
	n.prev.next = n.next
	n.next.prev = n.prev

	n.next = n.sentinel
	n.prev = n.sentinel.prev
	n.sentinel.prev = n
	n.prev.next = n
}

// appendToTail links the node at the MRU position of sentinel's list.
func (n *Node) appendToTail(sentinel *Node) {
	n.sentinel = sentinel
	tail := sentinel.prev
	sentinel.prev = n
	tail.next = n
	n.next = sentinel
	n.prev = tail
	sentinel.size++
}

// unlink detaches the node from its list.
func (n *Node) unlink() {
	n.sentinel.size--
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
}

// touch stamps the node with the given operation counter value and epoch.
func (n *Node) touch(op, epoch uint64) {
	n.lastOp = op
	n.epoch = epoch
}

// decayOp halves the node's last-op stamp once; called lazily when the node
// is considered as a victim after the block's counter was halved.
func (n *Node) decayOp(epoch uint64) {
	n.lastOp >>= 1
	if n.lastOp < 1 {
		n.lastOp = 1
	}
	n.epoch = epoch
}
