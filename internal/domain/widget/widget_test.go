package widget

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleReferenceString(t *testing.T) {
	ref := ModuleReference{ModuleName: "@jupyter-widgets/controls", ModuleVersion: "2.0.0", ClassName: "SliderView"}
	assert.Equal(t, "@jupyter-widgets/controls@2.0.0:SliderView", ref.String())
}

func TestModelClassExtend(t *testing.T) {
	parent := NewModelClass("WidgetModel", map[string]interface{}{"a": 1, "b": 2})
	child := parent.Extend("ChildModel", map[string]interface{}{"b": 3, "c": 4})

	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, parent.Defaults())
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 3, "c": 4}, child.Defaults())
	assert.Equal(t, KindModel, child.Kind())

	d := child.Defaults()
	d["a"] = 100
	assert.Equal(t, 1, child.Defaults()["a"])
}

func TestNamespaceExports(t *testing.T) {
	view := NewViewClass("ZView", func(opts ViewOptions) View { return NewBaseView(opts, "div") })
	model := NewModelClass("AModel", nil)
	ns := NewNamespace("pkg", "1.2.3", view, model)

	assert.Equal(t, "pkg", ns.Name())
	assert.Equal(t, "1.2.3", ns.Version())
	assert.Equal(t, []string{"AModel", "ZView"}, ns.Exports())

	got, ok := ns.Export("ZView")
	require.True(t, ok)
	assert.Equal(t, KindView, got.Kind())

	_, ok = ns.Export("Missing")
	assert.False(t, ok)
}

func TestModelAccessors(t *testing.T) {
	m := NewModel("m1", map[string]interface{}{
		"value":        float64(7),
		"description":  "speed",
		"disabled":     true,
		"_dom_classes": []interface{}{"a", 3, "b"},
		"layout":       "IPY_MODEL_layout-1",
	}, nil)

	assert.Equal(t, "m1", m.ID())
	assert.Equal(t, "m1", m.Comm().CommID())
	v, ok := m.GetFloat("value")
	assert.True(t, ok)
	assert.Equal(t, 7.0, v)
	assert.Equal(t, "speed", m.GetString("description"))
	assert.True(t, m.GetBool("disabled"))
	assert.Equal(t, []string{"a", "b"}, m.GetStrings("_dom_classes"))

	id, ok := ParseModelRef(m.GetString("layout"))
	assert.True(t, ok)
	assert.Equal(t, "layout-1", id)
	assert.Equal(t, "IPY_MODEL_layout-1", ModelRef(id))

	_, ok = ParseModelRef("IPY_MODEL_")
	assert.False(t, ok)
	_, ok = ParseModelRef(42)
	assert.False(t, ok)
}

func TestModelSetState(t *testing.T) {
	m := NewModel("m1", map[string]interface{}{"value": 1.0, "label": "a"}, nil)
	m.SetState(map[string]interface{}{"value": 2.0})

	v, _ := m.GetFloat("value")
	assert.Equal(t, 2.0, v)
	assert.Equal(t, "a", m.GetString("label"))

	snapshot := m.State()
	snapshot["value"] = 99.0
	v, _ = m.GetFloat("value")
	assert.Equal(t, 2.0, v)
}

func TestModelReferences(t *testing.T) {
	m := NewModel("m1", map[string]interface{}{
		KeyModelName:          "IntSliderModel",
		KeyModelModule:        "@jupyter-widgets/controls",
		KeyModelModuleVersion: "2.0.0",
		KeyViewName:           "IntSliderView",
		KeyViewModule:         "@jupyter-widgets/controls",
		KeyViewModuleVersion:  "2.0.0",
	}, nil)

	assert.Equal(t, "IntSliderModel", m.ModelReference().ClassName)
	assert.Equal(t, ModuleReference{
		ModuleName:    "@jupyter-widgets/controls",
		ModuleVersion: "2.0.0",
		ClassName:     "IntSliderView",
	}, m.ViewReference())
}

func TestPromises(t *testing.T) {
	ctx := context.Background()
	view := NewBaseView(ViewOptions{Model: NewModel("m", nil, nil)}, "div")

	got, err := Resolved(view).Await(ctx)
	require.NoError(t, err)
	assert.Same(t, view, got)

	boom := errors.New("boom")
	_, err = Rejected(boom).Await(ctx)
	assert.ErrorIs(t, err, boom)

	got, err = Go(ctx, func(context.Context) (View, error) { return view, nil }).Await(ctx)
	require.NoError(t, err)
	assert.Same(t, view, got)
}

func TestGoPromiseRunsAfterAbandon(t *testing.T) {
	var finished atomic.Bool
	release := make(chan struct{})
	p := Go(context.Background(), func(context.Context) (View, error) {
		<-release
		finished.Store(true)
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	_, err = p.Await(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, finished.Load, time.Second, time.Millisecond)
}

func TestErrors(t *testing.T) {
	cause := errors.New("network down")
	modErr := &ModuleNotFoundError{Module: "my-pkg", Version: "1.0.0", Cause: cause}
	assert.ErrorIs(t, modErr, ErrModuleNotFound)
	assert.ErrorIs(t, modErr, cause)
	assert.Equal(t, "could not load module my-pkg@1.0.0: network down", modErr.Error())

	clsErr := &ClassNotFoundError{Class: "Foo", Module: "my-pkg", Version: "1.0.0"}
	assert.ErrorIs(t, clsErr, ErrClassNotFound)
	assert.NotErrorIs(t, clsErr, ErrModuleNotFound)
	assert.Equal(t, "class Foo not found in module my-pkg@1.0.0", clsErr.Error())

	var target *ClassNotFoundError
	require.ErrorAs(t, error(clsErr), &target)
	assert.Equal(t, "Foo", target.Class)
}

func TestParseStateDocument(t *testing.T) {
	doc, err := ParseStateDocument([]byte(`{
		"version_major": 2,
		"version_minor": 0,
		"state": {
			"abc": {
				"model_name": "IntSliderModel",
				"model_module": "@jupyter-widgets/controls",
				"model_module_version": "2.0.0",
				"state": {"value": 5}
			}
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.VersionMajor)
	require.Contains(t, doc.State, "abc")
	assert.Equal(t, "IntSliderModel", doc.State["abc"].Reference().ClassName)
	assert.Equal(t, float64(5), doc.State["abc"].State["value"])

	_, err = ParseStateDocument([]byte(`{"state": [`))
	assert.Error(t, err)

	empty, err := ParseStateDocument([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, empty.State)
}

func TestParseViewPayload(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    string
		wantErr bool
	}{
		{name: "raw json", input: []byte(`{"model_id":"a","version_major":2}`), want: "a"},
		{name: "string json", input: `{"model_id":"b"}`, want: "b"},
		{name: "decoded map", input: map[string]interface{}{"model_id": "c", "version_major": float64(2)}, want: "c"},
		{name: "missing id", input: map[string]interface{}{}, wantErr: true},
		{name: "wrong type", input: 12, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseViewPayload(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.ModelID)
		})
	}
}

func TestEnterView(t *testing.T) {
	ctx, err := EnterView(context.Background(), "a")
	require.NoError(t, err)
	ctx, err = EnterView(ctx, "b")
	require.NoError(t, err)

	_, err = EnterView(ctx, "a")
	assert.ErrorIs(t, err, ErrCyclicReference)
	assert.Contains(t, err.Error(), "model a")

	// Siblings do not see each other.
	_, err = EnterView(context.Background(), "b")
	assert.NoError(t, err)

	deep := context.Background()
	for i := 0; i < MaxViewDepth; i++ {
		deep, err = EnterView(deep, fmt.Sprint(i))
		require.NoError(t, err)
	}
	_, err = EnterView(deep, "one-more")
	assert.ErrorIs(t, err, ErrViewTooDeep)
}
