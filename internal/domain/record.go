package domain

// Record is implemented by every type kept in the record store. A record
// supplies its own type name and the ordered key parts that form its
// composite lookup key.
type Record interface {
	RecordType() string
	RecordKeys() []string
}
