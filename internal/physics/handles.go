package physics

// BodyHandle is a stable identifier for a physics body. Handles are never
// reused while the map lives, so a stale handle can't alias a new body.
type BodyHandle uint32

// InvalidHandle is never returned by Register.
const InvalidHandle BodyHandle = 0

// HandleMap maps GameObject UIDs to body handles and back.
type HandleMap struct {
	byEntity map[uint64]BodyHandle
	byHandle map[BodyHandle]uint64
	next     BodyHandle
}

func NewHandleMap() *HandleMap {
	return &HandleMap{
		byEntity: make(map[uint64]BodyHandle),
		byHandle: make(map[BodyHandle]uint64),
	}
}

// Register returns the entity's handle, creating one on first sight.
func (m *HandleMap) Register(entity uint64) BodyHandle {
	if h, ok := m.byEntity[entity]; ok {
		return h
	}
	m.next++
	h := m.next
	m.byEntity[entity] = h
	m.byHandle[h] = entity
	return h
}

func (m *HandleMap) Handle(entity uint64) (BodyHandle, bool) {
	h, ok := m.byEntity[entity]
	return h, ok
}

func (m *HandleMap) Entity(h BodyHandle) (uint64, bool) {
	e, ok := m.byHandle[h]
	return e, ok
}

// Unregister forgets the entity. It reports whether it was known.
func (m *HandleMap) Unregister(entity uint64) bool {
	h, ok := m.byEntity[entity]
	if !ok {
		return false
	}
	delete(m.byEntity, entity)
	delete(m.byHandle, h)
	return true
}

func (m *HandleMap) Len() int {
	return len(m.byEntity)
}
