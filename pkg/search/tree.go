package search

import (
	"cmp"
	"slices"
	"sync"
)

// Tree stores the nodes of a search, nodes with the same word set are shared
type Tree[L cmp.Ordered] struct {
	mutex sync.RWMutex
	nodes []*Node[L]
	index map[string]NodeID
}

func newTree[L cmp.Ordered]() *Tree[L] {
	return &Tree[L]{index: make(map[string]NodeID)}
}

// getOrCreate returns the node holding the words and whether it was created by this call
func (tree *Tree[L]) getOrCreate(words []CanonicalWord[L]) (*Node[L], bool) {
	words = sortWords(words)
	key := wordsKey(words)

	tree.mutex.RLock()
	if id, ok := tree.index[key]; ok {
		defer tree.mutex.RUnlock()
		return tree.nodes[id], false
	}
	tree.mutex.RUnlock()

	tree.mutex.Lock()
	defer tree.mutex.Unlock()
	if id, ok := tree.index[key]; ok {
		return tree.nodes[id], false
	}
	node := newNode(NodeID(len(tree.nodes)), words, key)
	tree.nodes = append(tree.nodes, node)
	tree.index[key] = node.id
	return node, true
}

func (tree *Tree[L]) Node(id NodeID) *Node[L] {
	tree.mutex.RLock()
	defer tree.mutex.RUnlock()
	return tree.nodes[id]
}

func (tree *Tree[L]) Root() *Node[L] {
	return tree.Node(0)
}

func (tree *Tree[L]) Size() int {
	tree.mutex.RLock()
	defer tree.mutex.RUnlock()
	return len(tree.nodes)
}

func (tree *Tree[L]) Nodes() []*Node[L] {
	tree.mutex.RLock()
	defer tree.mutex.RUnlock()
	return slices.Clone(tree.nodes)
}

// dominatesAncestor reports whether the words of the node dominate those of some ancestor,
// the node itself is not its own ancestor
func (tree *Tree[L]) dominatesAncestor(node *Node[L]) bool {
	seen := map[NodeID]bool{node.id: true}
	queue := node.Parents()
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		ancestor := tree.Node(id)
		if IsSetMonotonicallyDominated(ancestor.words, node.words) {
			return true
		}
		queue = append(queue, ancestor.Parents()...)
	}
	return false
}
