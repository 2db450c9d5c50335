package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/snapctl/snapapi"
)

func testCatalog() *snapapi.Devices {
	return &snapapi.Devices{
		Success: true,
		Total:   4,
		Devices: map[string][]snapapi.DeviceInfo{
			"mobile": {
				{ID: "iphone-15-pro", Name: "iPhone 15 Pro", Width: 393, Height: 852, DeviceScaleFactor: 3, IsMobile: true},
				{ID: "pixel-8", Name: "Pixel 8", Width: 412, Height: 915, DeviceScaleFactor: 2.625, IsMobile: true},
			},
			"desktop": {
				{ID: "desktop-1080p", Name: "Desktop 1080p", Width: 1920, Height: 1080, DeviceScaleFactor: 1},
			},
			"tablet": {
				{ID: "ipad-pro", Name: "iPad Pro 12.9", Width: 1024, Height: 1366, DeviceScaleFactor: 2, IsMobile: true},
			},
		},
	}
}

func deviceIDs(devices []Device) []string {
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	return ids
}

func TestFlatten(t *testing.T) {
	devices := Flatten(testCatalog())
	assert.Equal(t, []string{"desktop-1080p", "iphone-15-pro", "pixel-8", "ipad-pro"}, deviceIDs(devices))
	assert.Equal(t, "mobile", devices[1].Category)
	assert.Nil(t, Flatten(nil))

	wrongTotal := testCatalog()
	wrongTotal.Total = -1
	assert.NotPanics(t, func() {
		assert.Len(t, Flatten(wrongTotal), 4)
	})
}

func TestDeviceHelpers(t *testing.T) {
	d := Device{DeviceInfo: snapapi.DeviceInfo{Width: 393, Height: 852, DeviceScaleFactor: 3}}
	assert.Equal(t, 1179, d.PhysicalWidth())
	assert.Equal(t, 2556, d.PhysicalHeight())
	assert.InDelta(t, 0.4613, d.AspectRatio(), 0.001)
	assert.Zero(t, Device{}.AspectRatio())
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "field comparison",
			expression: `Mobile and Width < 500`,
		},
		{
			name:       "helpers",
			expression: `inCategory("tablet") or (portrait() and physicalWidth() >= 1080)`,
		},
		{
			name:       "builtin string operators",
			expression: `Name contains "iPhone" or lower(ID) startsWith "pixel"`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `Width >`,
			wantErr:    true,
		},
		{
			name:       "unknown identifier",
			expression: `Colour == "red"`,
			wantErr:    true,
		},
		{
			name:       "non-boolean result",
			expression: `Width + Height`,
			wantErr:    true,
		},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.True(t, errors.As(err, &compErr))
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, filter.Expression())
		})
	}
}

func TestEvaluate(t *testing.T) {
	devices := Flatten(testCatalog())
	compiler := NewExprCompiler()

	tests := []struct {
		expression string
		want       []string
	}{
		{`Mobile`, []string{"iphone-15-pro", "pixel-8", "ipad-pro"}},
		{`not Mobile`, []string{"desktop-1080p"}},
		{`inCategory("MOBILE") and Scale >= 3`, []string{"iphone-15-pro"}},
		{`landscape()`, []string{"desktop-1080p"}},
		{`aspectRatio() > 0.7`, []string{"desktop-1080p", "ipad-pro"}},
		{`Name contains "Pro"`, []string{"iphone-15-pro", "ipad-pro"}},
		{`Device.Width == 412`, []string{"pixel-8"}},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			require.NoError(t, err)

			var got []string
			for _, d := range devices {
				if filter.Evaluate(d) {
					got = append(got, d.ID)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluationError(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`int(Name) > 0`)
	require.NoError(t, err)

	d := Flatten(testCatalog())[0]
	assert.False(t, filter.Evaluate(d))

	_, err = filter.Match(d)
	require.Error(t, err)
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "desktop-1080p", evalErr.DeviceID)
}

func TestCompilerCache(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile("Mobile")
	require.NoError(t, err)
	again, err := compiler.Compile("  Mobile ")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, compiler.Size())

	_, err = compiler.Compile("Width > 1000")
	require.NoError(t, err)
	_, err = compiler.Compile("Height > 1000")
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.Size())

	// "Mobile" was least recently used and has been evicted
	recompiled, err := compiler.Compile("Mobile")
	require.NoError(t, err)
	assert.NotSame(t, first, recompiled)

	compiler.Clear()
	assert.Equal(t, 0, compiler.Size())
	assert.Equal(t, 0, NewExprCompiler().Size())
}

func TestManager(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterFilters(map[string]string{
		"phones":  `inCategory("mobile")`,
		"retina":  `Scale >= 2`,
		"desktop": `not Mobile`,
	}))
	assert.Equal(t, []string{"desktop", "phones", "retina"}, m.FilterNames())

	err := m.RegisterFilter("broken", "Width >")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile filter 'broken'")

	devices := Flatten(testCatalog())
	ctx := context.Background()

	phones, err := m.Resolve("phones")
	require.NoError(t, err)
	matches, err := m.Apply(ctx, phones, devices)
	require.NoError(t, err)
	assert.Equal(t, []string{"iphone-15-pro", "pixel-8"}, deviceIDs(matches))

	adhoc, err := m.Resolve("Width >= 1024")
	require.NoError(t, err)
	matches, err = m.Apply(ctx, adhoc, devices)
	require.NoError(t, err)
	assert.Equal(t, []string{"desktop-1080p", "ipad-pro"}, deviceIDs(matches))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = m.Apply(cancelled, adhoc, devices)
	assert.ErrorIs(t, err, context.Canceled)
}
