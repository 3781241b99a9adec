package dom

import (
	"slices"
	"sync"
)

// MutationRecord represents a mutation that has been observed.
type MutationRecord struct {
	Type            string  // "childList", "attributes", or "characterData"
	Target          *Node   // The node that was mutated
	AddedNodes      []*Node // Nodes added (childList mutations)
	RemovedNodes    []*Node // Nodes removed (childList mutations)
	PreviousSibling *Node   // Previous sibling of added/removed nodes
	NextSibling     *Node   // Next sibling of added/removed nodes
	AttributeName   string  // Name of changed attribute (attributes mutations)
	OldValue        string  // Previous value (attributes and characterData)
}

// ObserveOptions selects which mutations an observer receives for a target.
type ObserveOptions struct {
	ChildList     bool
	Attributes    bool
	CharacterData bool
	Subtree       bool
}

// Scheduler queues deliveries. The editor's event loop implements it.
type Scheduler interface {
	QueueMicrotask(fn func())
}

// MutationObserver batches mutation records for the nodes it observes and
// delivers them in one callback per scheduler turn.
type MutationObserver struct {
	callback       func(records []MutationRecord, mo *MutationObserver)
	scheduler      Scheduler
	targets        map[*Node]ObserveOptions
	docs           []*Document
	pendingRecords []MutationRecord
	isScheduled    bool
	mu             sync.Mutex
}

// NewMutationObserver creates an observer. When scheduler is nil records are
// only accumulated and must be collected with TakeRecords.
func NewMutationObserver(scheduler Scheduler, callback func(records []MutationRecord, mo *MutationObserver)) *MutationObserver {
	return &MutationObserver{
		callback:  callback,
		scheduler: scheduler,
		targets:   make(map[*Node]ObserveOptions),
	}
}

// Observe starts (or updates) observation of target.
func (mo *MutationObserver) Observe(target *Node, opts ObserveOptions) {
	mo.mu.Lock()
	mo.targets[target] = opts
	doc := target.documentOrNil()
	known := slices.Contains(mo.docs, doc)
	if !known {
		mo.docs = append(mo.docs, doc)
	}
	mo.mu.Unlock()
	if !known {
		doc.RegisterMutationCallback(mo)
	}
}

// Disconnect stops all observation and drops pending records.
func (mo *MutationObserver) Disconnect() {
	mo.mu.Lock()
	docs := mo.docs
	mo.docs = nil
	clear(mo.targets)
	mo.pendingRecords = nil
	mo.mu.Unlock()
	for _, doc := range docs {
		doc.UnregisterMutationCallback(mo)
	}
}

// TakeRecords returns and clears the pending records.
func (mo *MutationObserver) TakeRecords() []MutationRecord {
	mo.mu.Lock()
	defer mo.mu.Unlock()
	records := mo.pendingRecords
	mo.pendingRecords = nil
	return records
}

// OnChildListMutation implements MutationCallback.
func (mo *MutationObserver) OnChildListMutation(target *Node, added, removed []*Node, prev, next *Node) {
	opts, ok := mo.getOptions(target)
	if !ok || !opts.ChildList {
		return
	}
	mo.queueRecord(MutationRecord{
		Type:            "childList",
		Target:          target,
		AddedNodes:      added,
		RemovedNodes:    removed,
		PreviousSibling: prev,
		NextSibling:     next,
	})
}

// OnAttributeMutation implements MutationCallback.
func (mo *MutationObserver) OnAttributeMutation(target *Node, name, oldValue string) {
	opts, ok := mo.getOptions(target)
	if !ok || !opts.Attributes {
		return
	}
	mo.queueRecord(MutationRecord{
		Type:          "attributes",
		Target:        target,
		AttributeName: name,
		OldValue:      oldValue,
	})
}

// OnCharacterDataMutation implements MutationCallback.
func (mo *MutationObserver) OnCharacterDataMutation(target *Node, oldValue string) {
	opts, ok := mo.getOptions(target)
	if !ok || !opts.CharacterData {
		return
	}
	mo.queueRecord(MutationRecord{
		Type:     "characterData",
		Target:   target,
		OldValue: oldValue,
	})
}

// getOptions returns the options for observing the given target or its ancestors.
func (mo *MutationObserver) getOptions(target *Node) (ObserveOptions, bool) {
	mo.mu.Lock()
	defer mo.mu.Unlock()

	if opts, ok := mo.targets[target]; ok {
		return opts, true
	}
	for node := target.parentNode; node != nil; node = node.parentNode {
		if opts, ok := mo.targets[node]; ok && opts.Subtree {
			return opts, true
		}
	}
	return ObserveOptions{}, false
}

// queueRecord adds a mutation record to the pending queue and schedules delivery.
func (mo *MutationObserver) queueRecord(record MutationRecord) {
	mo.mu.Lock()
	mo.pendingRecords = append(mo.pendingRecords, record)
	schedule := !mo.isScheduled && mo.scheduler != nil
	if schedule {
		mo.isScheduled = true
	}
	mo.mu.Unlock()

	if schedule {
		mo.scheduler.QueueMicrotask(mo.deliverRecords)
	}
}

// deliverRecords delivers pending mutation records to the callback.
func (mo *MutationObserver) deliverRecords() {
	mo.mu.Lock()
	records := mo.pendingRecords
	mo.pendingRecords = nil
	mo.isScheduled = false
	mo.mu.Unlock()

	if len(records) == 0 || mo.callback == nil {
		return
	}
	mo.callback(records, mo)
}
