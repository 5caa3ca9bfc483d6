package types

// TransactionStatus is the transaction state machine shared between a
// connection and its manager: depth 0 means no transaction, depth 1 a top
// level transaction, depth N>1 a savepoint nested N-1 deep. A broken status
// means the connection's transaction state can no longer be trusted and the
// connection should be discarded.
type TransactionStatus struct {
	depth  int
	broken bool
}

// Depth returns the current transaction nesting depth.
func (s *TransactionStatus) Depth() int {
	return s.depth
}

// InTransaction reports whether a transaction is open.
func (s *TransactionStatus) InTransaction() bool {
	return s.depth > 0
}

// Broken reports whether the transaction state has been poisoned.
func (s *TransactionStatus) Broken() bool {
	return s.broken
}

// Enter records one additional level of transaction nesting.
func (s *TransactionStatus) Enter() {
	s.depth++
}

// Exit records leaving one level of transaction nesting.
func (s *TransactionStatus) Exit() {
	if s.depth > 0 {
		s.depth--
	}
}

// SetBroken poisons the status. Once broken, only discarding the connection
// clears the state.
func (s *TransactionStatus) SetBroken() {
	s.broken = true
}
