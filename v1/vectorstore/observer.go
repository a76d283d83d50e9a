package vectorstore

import "time"

// observe notifies the configured observer about a completed operation.
// Meant to be deferred with the operation's named error:
//
//	defer s.observe("delete", time.Now(), &err)
func (s *Store) observe(operation string, start time.Time, err *error) {
	if s.cfg.Observer == nil {
		return
	}
	var opErr error
	if err != nil {
		opErr = *err
	}
	s.cfg.Observer.ObserveOperation(OperationContext{
		Operation: operation,
		Table:     s.cfg.TableName,
		Duration:  time.Since(start),
		Err:       opErr,
	})
}
