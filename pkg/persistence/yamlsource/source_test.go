package yamlsource

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence/resource"
	"deepsampler.dev/pkg/deepsampler/pkg/sampler"
)

type shape interface {
	Area() int
}

type square struct {
	Side int
}

func (s *square) Area() int {
	return s.Side * s.Side
}

type drawing struct {
	Title    string
	Shape    shape
	Layers   map[string]int
	Preview  []byte
	Rendered time.Duration
}

type canvas interface {
	Draw(title string, sides []int) *drawing
}

type realCanvas struct {
	calls int
}

func (c *realCanvas) Draw(title string, sides []int) *drawing {
	c.calls++

	return &drawing{
		Title:    title,
		Shape:    &square{Side: sides[0]},
		Layers:   map[string]int{"background": 0, "@overlay": 1},
		Preview:  []byte{0xde, 0xad},
		Rendered: 1500 * time.Millisecond,
	}
}

type canvasProxy struct {
	*sampler.Proxy
	real canvas
}

func canvasSampler(p *sampler.Proxy, real canvas) canvas {
	return &canvasProxy{Proxy: p, real: real}
}

func (c *canvasProxy) Draw(title string, sides []int) *drawing {
	ret, _ := c.Call("Draw", func(args []any) (any, error) {
		return c.real.Draw(args[0].(string), args[1].([]int)), nil
	}, title, sides)

	return sampler.As[*drawing](ret)
}

func declareDraw(s *sampler.Session) {
	declare := sampler.Prepare(s, canvasSampler)
	sampler.PersistentOf(s, declare.Draw(sampler.Any[string](s), sampler.Any[[]int](s))).HasID("canvas.Draw")
}

func newSource(t *testing.T, fsys afero.Fs) *Source {
	t.Helper()

	source, err := New(resource.NewFile("drawings.yaml", resource.WithFs(fsys), resource.WithRoot("/samples")))
	require.NoError(t, err)

	return source
}

func TestRecordAndReplayThroughYAML(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()

	recording := sampler.NewSession()
	declareDraw(recording)

	live := sampler.Intercept(recording, canvasSampler, canvas(&realCanvas{}))
	want := live.Draw("sketch", []int{4})

	require.NoError(t, persistence.NewManager(recording, newSource(t, fsys)).Record(ctx))

	raw, err := afero.ReadFile(fsys, "/samples/drawings.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "sampleMethodToSampleMap:")
	assert.Contains(t, string(raw), "canvas.Draw:")
	assert.Contains(t, string(raw), "@bean")
	assert.Contains(t, string(raw), "yamlsource.square")

	replay := sampler.NewSession()
	declareDraw(replay)

	loader := persistence.NewManager(replay, newSource(t, fsys)).RegisterType(&square{})
	require.NoError(t, loader.Load(ctx))

	real := &realCanvas{}
	got := sampler.Intercept(replay, canvasSampler, canvas(real)).Draw("sketch", []int{4})

	assert.Equal(t, want, got)
	assert.Equal(t, 16, got.Shape.Area())
	assert.Zero(t, real.calls)
}

func TestReplayWithoutRegisteredTypeFails(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()

	recording := sampler.NewSession()
	declareDraw(recording)
	sampler.Intercept(recording, canvasSampler, canvas(&realCanvas{})).Draw("sketch", []int{2})
	require.NoError(t, persistence.NewManager(recording, newSource(t, fsys)).Record(ctx))

	replay := sampler.NewSession()
	declareDraw(replay)

	err := persistence.NewManager(replay, newSource(t, fsys)).Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yamlsource.square")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/samples/drawings.yaml", []byte("id: [unclosed"), 0o644))

	_, err := newSource(t, fsys).Load(context.Background())

	var perr *persistence.PersistenceError
	require.ErrorAs(t, err, &perr)
}

func TestLoadDecodesHandWrittenDocument(t *testing.T) {
	fsys := afero.NewMemMapFs()
	doc := `
id: hand-written
sampleMethodToSampleMap:
  greeter.Greet:
    callMap:
      - parameter:
          args: [bob]
        returnValue: hello bob
      - parameter:
          args: ["@list"]
        returnValue: ["@time.Duration", 5]
`
	require.NoError(t, afero.WriteFile(fsys, "/samples/drawings.yaml", []byte(doc), 0o644))

	_, err := newSource(t, fsys).Load(context.Background())
	require.Error(t, err, "a bare @list tag is malformed")

	doc = `
id: hand-written
sampleMethodToSampleMap:
  greeter.Greet:
    callMap:
      - parameter:
          args: [bob]
        returnValue: hello bob
      - parameter:
          args: [alice]
        returnValue: ["@time.Duration", 5]
`
	require.NoError(t, afero.WriteFile(fsys, "/samples/drawings.yaml", []byte(doc), 0o644))

	m, err := newSource(t, fsys).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hand-written", m.ID)

	calls := m.Samples["greeter.Greet"].Calls
	require.Len(t, calls, 2)
	assert.Equal(t, []any{"bob"}, calls[0].Parameter.Args)
	assert.Equal(t, "hello bob", calls[0].ReturnValue)
	assert.Equal(t, 5*time.Nanosecond, calls[1].ReturnValue)
}
