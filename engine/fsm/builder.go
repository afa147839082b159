package fsm

import "fmt"

// AddState adds a node, replacing any node with the same id
func (m *Machine[T]) AddState(id StateID, name string, parentID StateID) *Node[T] {
	node := &Node[T]{
		ID:       id,
		Name:     name,
		ParentID: parentID,
	}
	m.nodes[id] = node
	return node
}

// AddTransition appends a transition to an existing node
func (m *Machine[T]) AddTransition(sourceID StateID, t Transition[T]) {
	if node, ok := m.nodes[sourceID]; ok {
		node.Transitions = append(node.Transitions, t)
	}
}

// SetInitial selects the state entered by Init
func (m *Machine[T]) SetInitial(id StateID) {
	m.initialID = id
}

// CompilePaths fills Node.Path for every node
// Must run after the graph is complete and before Init
func (m *Machine[T]) CompilePaths() error {
	for id, node := range m.nodes {
		path := make([]StateID, 0, 4)
		seen := make(map[StateID]bool, 4)

		for curr := node; ; {
			if seen[curr.ID] {
				return fmt.Errorf("state %q: parent cycle", node.Name)
			}
			seen[curr.ID] = true
			path = append(path, curr.ID)
			if curr.ParentID == StateNone {
				break
			}
			parent, ok := m.nodes[curr.ParentID]
			if !ok {
				return fmt.Errorf("node %d references missing parent %d: %w", id, curr.ParentID, ErrUnknownState)
			}
			curr = parent
		}

		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
		node.Path = path
	}
	return nil
}
