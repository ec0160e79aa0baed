package metrics

// Noop discards every measurement.
type Noop struct{}

func (Noop) RecordDrawsLoaded(string, int) {}
func (Noop) RecordSourceFailure(string)    {}
func (Noop) RecordTicket(string)           {}
func (Noop) RecordWarning(string)          {}
func (Noop) RecordError(string)            {}
func (Noop) RecordLatency(string, float64) {}
