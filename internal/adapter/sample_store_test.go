package adapter

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "deepsampler.dev/pkg/deepsampler/internal/model"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
)

func sampleModel() *persistence.Model {
	model := persistence.NewModel("model-1")
	model.AddCall("svc.Greet", persistence.Call{
		Parameter:   persistence.Parameter{Args: []any{"bob"}},
		ReturnValue: "hello bob",
	})

	return model
}

func TestLocalSampleStore_RoundTripByExtension(t *testing.T) {
	tests := []struct {
		name   string
		path   m.Path
		prefix string
	}{
		{"json", "samples/greet.json", "{"},
		{"yaml", "samples/greet.yaml", "id: model-1"},
		{"yml upper case", "samples/GREET.YML", "id: model-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			fsys := afero.NewMemMapFs()
			store := NewLocalSampleStore(WithFs(fsys), WithRoot("/work"))

			require.NoError(t, store.Save(ctx, tt.path, sampleModel()))

			raw, err := afero.ReadFile(fsys, "/work/"+string(tt.path))
			require.NoError(t, err)
			assert.Contains(t, string(raw), tt.prefix)

			loaded, err := store.Load(ctx, tt.path)
			require.NoError(t, err)
			assert.Equal(t, "model-1", loaded.ID)
			assert.Equal(t, []any{"bob"}, loaded.Samples["svc.Greet"].Calls[0].Parameter.Args)
			assert.Equal(t, "hello bob", loaded.Samples["svc.Greet"].Calls[0].ReturnValue)
		})
	}
}

func TestLocalSampleStore_RejectsUnknownExtension(t *testing.T) {
	store := NewLocalSampleStore(WithFs(afero.NewMemMapFs()))

	_, err := store.Load(context.Background(), "samples.xml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	err = store.Save(context.Background(), "samples", sampleModel())
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLocalSampleStore_Charset(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()

	model := persistence.NewModel("model-1")
	model.AddCall("svc.Greet", persistence.Call{ReturnValue: "Grüße"})

	require.NoError(t, NewLocalSampleStore(WithFs(fsys), WithCharset("latin1")).Save(ctx, "greet.json", model))

	raw, err := afero.ReadFile(fsys, "greet.json")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Gr\xfc\xdfe")

	_, err = NewLocalSampleStore(WithFs(fsys), WithCharset("nope")).Load(ctx, "greet.json")
	require.Error(t, err)
}
