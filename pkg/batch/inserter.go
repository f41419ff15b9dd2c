package batch

// Table is the ordered in-memory table's insertion contract. Ordering by key,
// version retention and memory accounting are the table's concern, not the
// batch subsystem's.
type Table interface {
	Add(seq uint64, kind Kind, key, value []byte, expiry uint64) error
}

// ExpiryPolicy normalizes the kind/expiry pair of an insert-family record
// before it reaches the table, e.g. converting a write-time request into a
// concrete deadline. A nil policy leaves records untouched.
type ExpiryPolicy interface {
	Normalize(key, value []byte, kind Kind, expiry uint64) (Kind, uint64)
}

// memTableInserter is the Handler that commits decoded records into a Table,
// assigning consecutive sequence numbers from the batch's base.
type memTableInserter struct {
	seq    uint64
	table  Table
	policy ExpiryPolicy
}

func (ins *memTableInserter) Put(key, value []byte, kind Kind, expiry uint64) error {
	if ins.policy != nil {
		kind, expiry = ins.policy.Normalize(key, value, kind, expiry)
	}
	if err := ins.table.Add(ins.seq, kind, key, value, expiry); err != nil {
		return err
	}
	ins.seq++
	return nil
}

func (ins *memTableInserter) Delete(key []byte) error {
	if err := ins.table.Add(ins.seq, KindDelete, key, nil, 0); err != nil {
		return err
	}
	ins.seq++
	return nil
}

// InsertInto applies every record of b into table in encoding order, with
// sequence numbers base, base+1, ..., base+count-1, where base is the batch's
// stored sequence. policy may be nil.
//
// Like Iterate, a failure partway through leaves the records already applied
// in the table.
func InsertInto(b *WriteBatch, table Table, policy ExpiryPolicy) error {
	ins := &memTableInserter{
		seq:    Sequence(b),
		table:  table,
		policy: policy,
	}
	return b.Iterate(ins)
}
