package sampler

import "deepsampler.dev/pkg/deepsampler/pkg/model"

// Quantity is an expected number of invocations.
type Quantity interface {
	Times() int
}

// FixedQuantity is an exact number of invocations.
type FixedQuantity int

// Times implements Quantity.
func (q FixedQuantity) Times() int {
	return int(q)
}

// Common quantities.
const (
	Never FixedQuantity = 0
	Once  FixedQuantity = 1
	Twice FixedQuantity = 2
)

// Times returns a quantity of n invocations.
func Times(n int) FixedQuantity {
	return FixedQuantity(n)
}

// UseGlobal applies processor to the result of every answered call.
func UseGlobal(s *Session, processor model.SampleReturnProcessor) {
	s.Executions().AddGlobalSampleReturnProcessor(processor)
}

// UseForLastSample applies processor to the results of the sample built last.
func UseForLastSample(s *Session, processor model.SampleReturnProcessor) {
	last := s.Samples().LastSampleDefinition()
	if last == nil {
		panic(model.NewInvalidConfigError("no sample has been declared before UseForLastSample"))
	}

	s.Executions().AddSampleReturnProcessor(last, processor)
}
