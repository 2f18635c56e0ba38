package domain

// Dataset is an immutable snapshot of transactions. Every aggregation reads
// from a Dataset; nothing writes to it after construction.
type Dataset struct {
	records []Transaction
}

// NewDataset copies records into a new snapshot.
func NewDataset(records []Transaction) *Dataset {
	cp := make([]Transaction, len(records))
	copy(cp, records)
	return &Dataset{records: cp}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns a copy of record i.
func (d *Dataset) At(i int) Transaction {
	return d.records[i]
}

// Records returns a copy of all records in their current order.
func (d *Dataset) Records() []Transaction {
	if d == nil {
		return nil
	}
	cp := make([]Transaction, len(d.records))
	copy(cp, d.records)
	return cp
}

// Each calls fn for every record in order, stopping early if fn returns false.
func (d *Dataset) Each(fn func(i int, t *Transaction) bool) {
	if d == nil {
		return
	}
	for i := range d.records {
		rec := d.records[i]
		if !fn(i, &rec) {
			return
		}
	}
}
