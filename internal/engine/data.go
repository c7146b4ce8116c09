package engine

// DataStore is the rule-keyed store for module-private state. Modules
// may not share mutable game state between calls; whatever they need
// to remember goes into their own slot here, namespaced by rule name
// so modules cannot trample each other.
type DataStore struct {
	slots map[string]map[string]string
}

// NewDataStore creates an empty store.
func NewDataStore() *DataStore {
	return &DataStore{slots: make(map[string]map[string]string)}
}

// Get reads a key from the rule's slot.
func (d *DataStore) Get(rule, key string) (string, bool) {
	slot, ok := d.slots[rule]
	if !ok {
		return "", false
	}
	v, ok := slot[key]
	return v, ok
}

// Set writes a key into the rule's slot.
func (d *DataStore) Set(rule, key, value string) {
	slot, ok := d.slots[rule]
	if !ok {
		slot = make(map[string]string)
		d.slots[rule] = slot
	}
	slot[key] = value
}

// Delete removes a key from the rule's slot.
func (d *DataStore) Delete(rule, key string) {
	if slot, ok := d.slots[rule]; ok {
		delete(slot, key)
		if len(slot) == 0 {
			delete(d.slots, rule)
		}
	}
}

// DropRule discards the rule's whole slot.
func (d *DataStore) DropRule(rule string) {
	delete(d.slots, rule)
}

// Keys lists the keys in the rule's slot, in no particular order.
func (d *DataStore) Keys(rule string) []string {
	slot, ok := d.slots[rule]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(slot))
	for k := range slot {
		keys = append(keys, k)
	}
	return keys
}
