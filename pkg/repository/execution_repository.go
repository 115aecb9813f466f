package repository

import (
	"reflect"
	"sync"

	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

// SampleExecutionInformation counts the invocations of one definition and logs its calls.
type SampleExecutionInformation struct {
	mu           sync.Mutex
	definition   *model.SampleDefinition
	timesInvoked int
	calls        []model.MethodCall
}

// Definition returns the definition this information belongs to.
func (i *SampleExecutionInformation) Definition() *model.SampleDefinition {
	return i.definition
}

// IncreaseTimesInvoked counts one invocation without logging it.
func (i *SampleExecutionInformation) IncreaseTimesInvoked() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.timesInvoked++
}

// AddMethodCall logs call and counts it.
func (i *SampleExecutionInformation) AddMethodCall(call model.MethodCall) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.calls = append(i.calls, call)
	i.timesInvoked++
}

// TimesInvoked returns the number of counted invocations.
func (i *SampleExecutionInformation) TimesInvoked() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.timesInvoked
}

// MethodCalls returns a copy of the logged calls in order.
func (i *SampleExecutionInformation) MethodCalls() []model.MethodCall {
	i.mu.Lock()
	defer i.mu.Unlock()

	return append([]model.MethodCall(nil), i.calls...)
}

// ExecutionInformation groups the execution information of one declaring type. Lookups are
// by definition handle, never by definition equality.
type ExecutionInformation struct {
	mu       sync.Mutex
	byHandle map[model.Handle]*SampleExecutionInformation
	order    []*SampleExecutionInformation
}

func newExecutionInformation() *ExecutionInformation {
	return &ExecutionInformation{byHandle: map[model.Handle]*SampleExecutionInformation{}}
}

// GetOrCreateBySample returns the information for definition, creating it on first use.
func (e *ExecutionInformation) GetOrCreateBySample(definition *model.SampleDefinition) *SampleExecutionInformation {
	e.mu.Lock()
	defer e.mu.Unlock()

	if info, ok := e.byHandle[definition.Handle()]; ok {
		return info
	}

	info := &SampleExecutionInformation{definition: definition}
	e.byHandle[definition.Handle()] = info
	e.order = append(e.order, info)

	return info
}

// All returns the per-definition information in creation order.
func (e *ExecutionInformation) All() []*SampleExecutionInformation {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]*SampleExecutionInformation(nil), e.order...)
}

// ExecutionRepository tracks invocations per declaring type and the return processors
// applied to answered calls.
type ExecutionRepository struct {
	mu     sync.Mutex
	byType map[reflect.Type]*ExecutionInformation
	types  []reflect.Type

	globalProcessors []model.SampleReturnProcessor
	processors       map[model.Handle][]model.SampleReturnProcessor
}

// NewExecutionRepository creates an empty repository.
func NewExecutionRepository() *ExecutionRepository {
	return &ExecutionRepository{
		byType:     map[reflect.Type]*ExecutionInformation{},
		processors: map[model.Handle][]model.SampleReturnProcessor{},
	}
}

// GetOrCreate returns the information for a declaring type.
func (r *ExecutionRepository) GetOrCreate(target reflect.Type) *ExecutionInformation {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.byType[target]; ok {
		return info
	}

	info := newExecutionInformation()
	r.byType[target] = info
	r.types = append(r.types, target)

	return info
}

// GetOrCreateBySample returns the information for definition under its declaring type.
func (r *ExecutionRepository) GetOrCreateBySample(definition *model.SampleDefinition) *SampleExecutionInformation {
	return r.GetOrCreate(definition.SampledMethod().Target).GetOrCreateBySample(definition)
}

// Notify counts an answered invocation of definition.
func (r *ExecutionRepository) Notify(definition *model.SampleDefinition) {
	r.GetOrCreateBySample(definition).IncreaseTimesInvoked()
}

// AddMethodCall logs and counts a call of definition.
func (r *ExecutionRepository) AddMethodCall(definition *model.SampleDefinition, call model.MethodCall) {
	r.GetOrCreateBySample(definition).AddMethodCall(call)
}

// GetAll returns a snapshot of the information keyed by declaring type.
func (r *ExecutionRepository) GetAll() map[reflect.Type]*ExecutionInformation {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make(map[reflect.Type]*ExecutionInformation, len(r.byType))
	for t, info := range r.byType {
		all[t] = info
	}

	return all
}

// Types returns the declaring types in the order they were first seen.
func (r *ExecutionRepository) Types() []reflect.Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]reflect.Type(nil), r.types...)
}

// AddGlobalSampleReturnProcessor registers a processor for every answered call.
func (r *ExecutionRepository) AddGlobalSampleReturnProcessor(processor model.SampleReturnProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.globalProcessors = append(r.globalProcessors, processor)
}

// AddSampleReturnProcessor registers a processor for calls answered by definition.
func (r *ExecutionRepository) AddSampleReturnProcessor(definition *model.SampleDefinition, processor model.SampleReturnProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.processors[definition.Handle()] = append(r.processors[definition.Handle()], processor)
}

// ReturnProcessors returns the global processors followed by the ones for definition.
func (r *ExecutionRepository) ReturnProcessors(definition *model.SampleDefinition) []model.SampleReturnProcessor {
	r.mu.Lock()
	defer r.mu.Unlock()

	applicable := append([]model.SampleReturnProcessor(nil), r.globalProcessors...)

	return append(applicable, r.processors[definition.Handle()]...)
}

// Clear drops all execution information and processors.
func (r *ExecutionRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byType = map[reflect.Type]*ExecutionInformation{}
	r.types = nil
	r.globalProcessors = nil
	r.processors = map[model.Handle][]model.SampleReturnProcessor{}
}
