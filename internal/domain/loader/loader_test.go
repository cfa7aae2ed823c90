package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/builtin/base"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/builtin/controls"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/monitoring"
)

func TestLoadBuiltinIgnoresVersion(t *testing.T) {
	l := New(nil)
	for _, version := range []string{"2.0.0", "1.0.0", "*", "", "99.1"} {
		cls, err := l.Load(context.Background(), "WidgetModel", BaseNamespace, version)
		require.NoError(t, err, version)
		assert.Same(t, base.WidgetModel, cls)
	}
}

func TestLoadScenario(t *testing.T) {
	l := New(nil)
	ctx := context.Background()

	cls, err := l.Load(ctx, "SliderView", ControlsNamespace, "2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "SliderView", cls.ClassName())
	assert.Equal(t, widget.KindView, cls.Kind())
	expected, _ := controls.Module.Export("SliderView")
	assert.Same(t, expected, cls)

	_, err = l.Load(ctx, "Foo", "my-custom-pkg", "1.0.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, widget.ErrModuleNotFound)
	var notFound *widget.ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "my-custom-pkg", notFound.Module)
	assert.Equal(t, "1.0.0", notFound.Version)
}

func TestLoadOutputNamespace(t *testing.T) {
	cls, err := New(nil).Load(context.Background(), "OutputView", OutputNamespace, "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, widget.KindView, cls.Kind())
}

func TestLoadBuiltinMissingClass(t *testing.T) {
	_, err := New(nil).Load(context.Background(), "Nope", BaseNamespace, "2.0.0")
	assert.ErrorIs(t, err, widget.ErrClassNotFound)
}

func TestLoadExternal(t *testing.T) {
	custom := widget.NewNamespace("my-custom-pkg", "1.0.0", widget.NewModelClass("FooModel", nil))
	var calls []string
	external := func(_ context.Context, name, version string) (widget.Module, error) {
		calls = append(calls, name+"@"+version)
		if name == "my-custom-pkg" {
			return custom, nil
		}
		return nil, errors.New("registry unreachable")
	}
	l := New(external)
	ctx := context.Background()

	tests := []struct {
		name      string
		className string
		module    string
		version   string
		wantErr   error
	}{
		{name: "found", className: "FooModel", module: "my-custom-pkg", version: "1.0.0"},
		{name: "class missing", className: "Foo", module: "my-custom-pkg", version: "1.0.0", wantErr: widget.ErrClassNotFound},
		{name: "loader rejects", className: "Bar", module: "other-pkg", version: "0.1.0", wantErr: widget.ErrModuleNotFound},
		{name: "builtin bypasses loader", className: "ButtonView", module: ControlsNamespace, version: "2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls, err := l.Load(ctx, tt.className, tt.module, tt.version)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.className, cls.ClassName())
		})
	}

	// No caching: every external resolution calls the loader again.
	assert.Equal(t, []string{"my-custom-pkg@1.0.0", "my-custom-pkg@1.0.0", "other-pkg@0.1.0"}, calls)
}

func TestClassNotFoundNamesAllIdentifiers(t *testing.T) {
	external := func(context.Context, string, string) (widget.Module, error) {
		return widget.NewNamespace("pkg", "3.1.0"), nil
	}
	_, err := New(external).Load(context.Background(), "Missing", "pkg", "3.1.0")

	var notFound *widget.ClassNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Missing", notFound.Class)
	assert.Equal(t, "pkg", notFound.Module)
	assert.Equal(t, "3.1.0", notFound.Version)
}

func TestExternalErrorIsWrapped(t *testing.T) {
	cause := errors.New("timeout")
	external := func(context.Context, string, string) (widget.Module, error) { return nil, cause }

	_, err := New(external).Load(context.Background(), "X", "pkg", "1.0.0")
	assert.ErrorIs(t, err, widget.ErrModuleNotFound)
	assert.ErrorIs(t, err, cause)
}

func TestVersionGapIsFlagged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	metrics := monitoring.NewMetrics()
	l := New(nil, WithLogger(zap.New(core)), WithMetrics(metrics))

	_, err := l.Load(context.Background(), "SliderView", ControlsNamespace, "^1.5.0")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ClassLoads.WithLabelValues("builtin", "version_mismatch")))

	_, err = l.Load(context.Background(), "SliderView", ControlsNamespace, "2.1.0")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ClassLoads.WithLabelValues("builtin", "ok")))
}

func TestVersionGap(t *testing.T) {
	tests := []struct {
		requested string
		linked    string
		want      bool
	}{
		{"2.0.0", "2.0.0", false},
		{"^2.1.0", "2.0.0", false},
		{"~1.1", "2.0.0", true},
		{"1.x", "2.0.0", true},
		{"3", "2.0.0", true},
		{"*", "2.0.0", false},
		{"", "2.0.0", false},
		{"latest", "2.0.0", false},
		{">=1.0.0 <3.0.0", "2.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionGap(tt.requested, tt.linked))
		})
	}
}

func TestNamespaces(t *testing.T) {
	var names []string
	for _, m := range Namespaces() {
		names = append(names, m.Name())
		assert.True(t, IsReserved(m.Name()))
	}
	assert.Equal(t, []string{BaseNamespace, ControlsNamespace, OutputNamespace}, names)
	assert.False(t, IsReserved("my-custom-pkg"))
	assert.False(t, New(nil).HasExternal())
}
