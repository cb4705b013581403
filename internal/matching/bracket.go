package matching

import "simvenue/pkg/events"

// BracketManager is the parent→children multimap spec.md §9 calls for
// instead of an owning reference between Order values: "there is never a
// direct owning link between order objects." The engine consults this index
// when an entry fills (to activate SL/TP), when a child fills (to cancel
// its OCO sibling), and when an entry is cancelled/rejected (to cancel both
// children).
type BracketManager struct {
	childrenOf map[events.ClientOrderID][]events.ClientOrderID
	parentOf   map[events.ClientOrderID]events.ClientOrderID
}

// NewBracketManager creates an empty manager.
func NewBracketManager() *BracketManager {
	return &BracketManager{
		childrenOf: make(map[events.ClientOrderID][]events.ClientOrderID),
		parentOf:   make(map[events.ClientOrderID]events.ClientOrderID),
	}
}

// Register links entryID to its stopLossID and takeProfitID children.
func (b *BracketManager) Register(entryID, stopLossID, takeProfitID events.ClientOrderID) {
	b.childrenOf[entryID] = []events.ClientOrderID{stopLossID, takeProfitID}
	b.parentOf[stopLossID] = entryID
	b.parentOf[takeProfitID] = entryID
}

// Children returns the client order ids of id's bracket children, if any.
func (b *BracketManager) Children(entryID events.ClientOrderID) []events.ClientOrderID {
	return b.childrenOf[entryID]
}

// Parent returns id's bracket parent, if it is a bracket child.
func (b *BracketManager) Parent(childID events.ClientOrderID) (events.ClientOrderID, bool) {
	p, ok := b.parentOf[childID]
	return p, ok
}

// Sibling returns the other child in childID's OCO pair, if any.
func (b *BracketManager) Sibling(childID events.ClientOrderID) (events.ClientOrderID, bool) {
	parent, ok := b.parentOf[childID]
	if !ok {
		return "", false
	}
	for _, c := range b.childrenOf[parent] {
		if c != childID {
			return c, true
		}
	}
	return "", false
}

// IsChild reports whether id was registered as a bracket child.
func (b *BracketManager) IsChild(id events.ClientOrderID) bool {
	_, ok := b.parentOf[id]
	return ok
}
