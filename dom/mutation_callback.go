package dom

// MutationCallback receives every tree mutation of a document as it happens.
// MutationObserver is built on it.
type MutationCallback interface {
	OnChildListMutation(target *Node, addedNodes, removedNodes []*Node, previousSibling, nextSibling *Node)
	OnAttributeMutation(target *Node, attributeName, oldValue string)
	OnCharacterDataMutation(target *Node, oldValue string)
}

// RegisterMutationCallback adds cb to the document's mutation listeners.
// Registering the same callback twice is a no-op.
func (d *Document) RegisterMutationCallback(cb MutationCallback) {
	for _, existing := range d.documentData.callbacks {
		if existing == cb {
			return
		}
	}
	d.documentData.callbacks = append(d.documentData.callbacks, cb)
}

// UnregisterMutationCallback removes cb from the document's mutation listeners.
func (d *Document) UnregisterMutationCallback(cb MutationCallback) {
	callbacks := d.documentData.callbacks
	for i, existing := range callbacks {
		if existing == cb {
			d.documentData.callbacks = append(callbacks[:i:i], callbacks[i+1:]...)
			return
		}
	}
}

func mutationCallbacks(n *Node) []MutationCallback {
	doc := n.documentOrNil()
	if doc == nil || doc.documentData == nil {
		return nil
	}
	return doc.documentData.callbacks
}

func notifyChildListMutation(target *Node, added, removed []*Node, prev, next *Node) {
	for _, cb := range mutationCallbacks(target) {
		cb.OnChildListMutation(target, added, removed, prev, next)
	}
}

func notifyAttributeMutation(target *Node, name, oldValue string) {
	for _, cb := range mutationCallbacks(target) {
		cb.OnAttributeMutation(target, name, oldValue)
	}
}

func notifyCharacterDataMutation(target *Node, oldValue string) {
	for _, cb := range mutationCallbacks(target) {
		cb.OnCharacterDataMutation(target, oldValue)
	}
}
