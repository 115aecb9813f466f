package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"deepsampler.dev/pkg/deepsampler/pkg/bean"
	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

// Manager records the calls of persistent samples to its sources and loads them back.
type Manager struct {
	repos     Repositories
	sources   []SourceManager
	converter *bean.Converter
	newID     func() string
}

// NewManager returns a Manager working on repos.
func NewManager(repos Repositories, sources ...SourceManager) *Manager {
	return &Manager{
		repos:     repos,
		sources:   sources,
		converter: bean.NewConverter(),
		newID:     uuid.NewString,
	}
}

// AddSource adds a source. Record saves to every source; Load reads them in order.
func (m *Manager) AddSource(source SourceManager) *Manager {
	m.sources = append(m.sources, source)
	return m
}

// AddBeanExtension registers a bean extension. Extensions added later take precedence.
func (m *Manager) AddBeanExtension(ext bean.Extension) *Manager {
	m.converter.AddExtension(ext)
	return m
}

// RegisterType makes the type of value known for values recorded through an interface.
func (m *Manager) RegisterType(value any) *Manager {
	m.converter.RegisterType(value)
	return m
}

// RegisterConstructor registers the constructor of a struct with unexported fields.
func (m *Manager) RegisterConstructor(fn any) error {
	return m.converter.RegisterConstructor(fn)
}

// Converter returns the bean converter used by the manager.
func (m *Manager) Converter() *bean.Converter {
	return m.converter
}

// BuildModel converts the recorded calls into a Model. Identical calls of a sample are
// stored once.
func (m *Manager) BuildModel() (*Model, error) {
	persisted := NewModel(m.newID())
	executions := m.repos.Executions()

	for _, target := range executions.Types() {
		for _, info := range executions.GetOrCreate(target).All() {
			definition := info.Definition()
			method := definition.SampledMethod()

			for _, call := range info.MethodCalls() {
				converted, err := m.convertCall(method, call)
				if err != nil {
					return nil, fmt.Errorf("convert call of %s: %w", definition.SampleID, err)
				}

				persisted.AddCall(definition.SampleID, converted)
			}
		}
	}

	return persisted, nil
}

func (m *Manager) convertCall(method model.SampledMethod, call model.MethodCall) (Call, error) {
	types := method.ParameterTypes()
	args := make([]any, len(call.Args))

	for i, arg := range call.Args {
		var declared reflect.Type
		if i < len(types) {
			declared = types[i]
		}

		converted, err := m.converter.Convert(arg, declared)
		if err != nil {
			return Call{}, fmt.Errorf("argument %d: %w", i, err)
		}

		args[i] = converted
	}

	ret, err := m.converter.Convert(call.ReturnValue, method.ReturnType())
	if err != nil {
		return Call{}, fmt.Errorf("return value: %w", err)
	}

	return Call{Parameter: Parameter{Args: args}, ReturnValue: ret}, nil
}

// Record saves the recorded calls to every source.
func (m *Manager) Record(ctx context.Context) error {
	persisted, err := m.BuildModel()
	if err != nil {
		return err
	}

	for _, source := range m.sources {
		if err := source.Save(ctx, persisted); err != nil {
			return fmt.Errorf("save samples: %w", err)
		}
	}

	slog.Debug("recorded samples", "id", persisted.ID, "samples", len(persisted.Samples), "calls", persisted.CallCount())

	return nil
}

// Load replaces the samples of the test with the samples read from the sources.
//
// Persisted samples are matched to declared samples by id; samples without a declaration
// are dropped. Each source replaces what the previous one loaded. It fails with
// *NoSamplesLoadedError if nothing is left.
func (m *Manager) Load(ctx context.Context) error {
	samples := m.repos.Samples()
	declared := groupByID(samples.Samples())

	for _, source := range m.sources {
		persisted, err := source.Load(ctx)
		if err != nil {
			return fmt.Errorf("load samples: %w", err)
		}

		definitions, err := m.toSamples(persisted, declared)
		if err != nil {
			return err
		}

		samples.ReplaceAll(definitions)

		slog.Debug("loaded samples", "id", persisted.ID, "definitions", len(definitions))
	}

	if samples.IsEmpty() {
		return &NoSamplesLoadedError{}
	}

	return nil
}

type declarations struct {
	byID map[string][]*model.SampleDefinition
	ids  []string
}

func groupByID(definitions []*model.SampleDefinition) declarations {
	d := declarations{byID: make(map[string][]*model.SampleDefinition)}

	for _, definition := range definitions {
		if _, ok := d.byID[definition.SampleID]; !ok {
			d.ids = append(d.ids, definition.SampleID)
		}

		d.byID[definition.SampleID] = append(d.byID[definition.SampleID], definition)
	}

	return d
}

// closest returns the declared id with the smallest edit distance to id.
func (d declarations) closest(id string) string {
	best, bestDistance := "", -1

	for _, candidate := range d.ids {
		distance := levenshtein.ComputeDistance(id, candidate)
		if bestDistance < 0 || distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}

	return best
}

func (m *Manager) toSamples(persisted *Model, declared declarations) ([]*model.SampleDefinition, error) {
	var (
		definitions []*model.SampleDefinition
		missed      []MissedCall
	)

	for _, id := range persisted.IDs() {
		live := declared.byID[id]
		if len(live) == 0 {
			slog.Debug("discarding persisted sample without declaration", "id", id, "closest", declared.closest(id))
			continue
		}

		method := live[0].SampledMethod()

		for _, call := range persisted.Samples[id].Calls {
			definition, accepted, err := m.toSample(id, method, call, live)
			if err != nil {
				return nil, err
			}

			if !accepted {
				missed = append(missed, MissedCall{ID: id, Args: definition.ParameterValues})
				continue
			}

			definitions = append(definitions, definition)
		}
	}

	if len(missed) > 0 {
		return nil, &ParametersAreNotMatchedError{Calls: missed}
	}

	return definitions, nil
}

func (m *Manager) toSample(id string, method model.SampledMethod, call Call, live []*model.SampleDefinition) (*model.SampleDefinition, bool, error) {
	types := method.ParameterTypes()
	if len(types) != len(call.Parameter.Args) {
		return nil, false, NewPersistenceError(
			"the method of %s has %d parameters but %d persistent parameters were found: %s",
			id, len(types), len(call.Parameter.Args), model.FormatArgs(call.Parameter.Args))
	}

	args := make([]any, len(types))

	for i, t := range types {
		arg, err := m.converter.Revert(call.Parameter.Args[i], t)
		if err != nil {
			return nil, false, fmt.Errorf("revert argument %d of %s: %w", i, id, err)
		}

		args[i] = arg
	}

	var ret any

	if t := method.ReturnType(); t != nil {
		reverted, err := m.converter.Revert(call.ReturnValue, t)
		if err != nil {
			return nil, false, fmt.Errorf("revert return value of %s: %w", id, err)
		}

		ret = reverted
	}

	definition := model.NewSampleDefinition(method)
	definition.SampleID = id
	definition.ParameterValues = args
	definition.Answer = model.FixedAnswer(ret)

	declaration, err := acceptingDeclaration(live, args)
	if err != nil {
		return nil, false, fmt.Errorf("match persisted arguments of %s: %w", id, err)
	}

	if declaration == nil {
		return definition, false, nil
	}

	definition.ParameterMatchers = matchersFor(args, declaration.ParameterMatchers)

	return definition, true, nil
}

func acceptingDeclaration(live []*model.SampleDefinition, args []any) (found *model.SampleDefinition, err error) {
	defer func() {
		if r := recover(); r != nil {
			var cfg *model.InvalidConfigError
			if recovered, ok := r.(error); ok && errors.As(recovered, &cfg) {
				found, err = nil, recovered
				return
			}

			panic(r)
		}
	}()

	for _, definition := range live {
		if definition.ArgumentsMatch(args) {
			return definition, nil
		}
	}

	return nil, nil
}

// matchersFor compares future calls with the persisted arguments, by equality unless the
// declaration used a ComboMatcher for the position.
func matchersFor(args []any, declared []model.ParameterMatcher) []model.ParameterMatcher {
	matchers := make([]model.ParameterMatcher, len(args))

	for i, arg := range args {
		persisted := arg

		if i < len(declared) {
			if combo, ok := declared[i].(*ComboMatcher); ok {
				matchers[i] = model.MatcherFunc(func(actual any) bool {
					return combo.Persistent(actual, persisted)
				})

				continue
			}
		}

		matchers[i] = model.NewEqualsMatcher(persisted)
	}

	return matchers
}
