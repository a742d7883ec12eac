package dac

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/hifidac/dacbroker/internal/propstore"
)

// mockStore is an in-memory propstore.Store for testing.
type mockStore struct {
	mu     sync.Mutex
	values map[string]string
	setErr error // forced error for testing write failures
}

func newMockStore() *mockStore {
	return &mockStore{values: make(map[string]string)}
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", propstore.ErrNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

// setupHardware creates a fake hardware instance directory containing the
// named control files, each seeded with "0\n".
func setupHardware(t *testing.T, files ...string) string {
	t.Helper()

	base := filepath.Join(t.TempDir(), "9-0048")
	if err := os.Mkdir(base, 0o755); err != nil {
		t.Fatalf("creating base dir: %v", err)
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(base, f), []byte("0\n"), 0o644); err != nil {
			t.Fatalf("creating control file %s: %v", f, err)
		}
	}
	return base
}

func newTestController(t *testing.T, base string, store *mockStore) *Controller {
	t.Helper()

	c, err := New(context.Background(), Deps{BasePath: base, Props: store})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func readHardwareFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading control file: %v", err)
	}
	return string(data)
}

func TestNew_RequiresPropertyStore(t *testing.T) {
	if _, err := New(context.Background(), Deps{BasePath: "/tmp"}); err == nil {
		t.Error("New() without property store, want error")
	}
}

func TestNew_CatalogMatchesControlFiles(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []Feature
	}{
		{
			name:  "both features present",
			files: []string{"avc_volume", "hifi_mode"},
			want:  []Feature{FeatureAVCVolume, FeatureHifiMode},
		},
		{
			name:  "volume only",
			files: []string{"avc_volume"},
			want:  []Feature{FeatureAVCVolume},
		},
		{
			name:  "mode only",
			files: []string{"hifi_mode"},
			want:  []Feature{FeatureHifiMode},
		},
		{
			name:  "no control files",
			files: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := setupHardware(t, tt.files...)
			c := newTestController(t, base, newMockStore())

			got := c.ListSupportedFeatures()
			if len(got) != len(tt.want) {
				t.Fatalf("ListSupportedFeatures() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("catalog[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNew_EmptyBasePathDegrades(t *testing.T) {
	c := newTestController(t, "", newMockStore())

	if got := c.ListSupportedFeatures(); len(got) != 0 {
		t.Errorf("ListSupportedFeatures() = %v, want empty", got)
	}
	if c.GetValue(context.Background(), FeatureAVCVolume) != -1 {
		t.Error("GetValue() on degraded controller, want -1")
	}
	if c.SetValue(context.Background(), FeatureAVCVolume, -5) {
		t.Error("SetValue() on degraded controller, want false")
	}
}

func TestNew_PrimesHardwareFromPropertyStore(t *testing.T) {
	base := setupHardware(t, "avc_volume", "hifi_mode")
	store := newMockStore()
	store.values[PropKeyAVCVolume] = "-12"
	store.values[PropKeyHifiMode] = "2"

	newTestController(t, base, store)

	// Property state wins over whatever the hardware reset to.
	if got := readHardwareFile(t, filepath.Join(base, "avc_volume")); got != "12" {
		t.Errorf("avc_volume control file = %q, want %q (sign-flipped)", got, "12")
	}
	if got := readHardwareFile(t, filepath.Join(base, "hifi_mode")); got != "2" {
		t.Errorf("hifi_mode control file = %q, want %q", got, "2")
	}

	// Canonical values stay signed in the store.
	if store.values[PropKeyAVCVolume] != "-12" {
		t.Errorf("property %s = %q, want %q", PropKeyAVCVolume, store.values[PropKeyAVCVolume], "-12")
	}
}

func TestValueSpace(t *testing.T) {
	base := setupHardware(t, "avc_volume", "hifi_mode")
	c := newTestController(t, base, newMockStore())

	space, ok := c.ValueSpace(FeatureAVCVolume)
	if !ok {
		t.Fatal("ValueSpace(avc_volume) ok = false")
	}
	if space.Range == nil {
		t.Fatal("ValueSpace(avc_volume).Range = nil")
	}
	if space.Range.Min != -24 || space.Range.Max != 0 || space.Range.Step != 1 {
		t.Errorf("avc_volume range = %+v, want min=-24 max=0 step=1", *space.Range)
	}
	if len(space.Modes) != 0 {
		t.Errorf("avc_volume has %d modes, want 0", len(space.Modes))
	}

	space, ok = c.ValueSpace(FeatureHifiMode)
	if !ok {
		t.Fatal("ValueSpace(hifi_mode) ok = false")
	}
	if space.Range != nil {
		t.Error("ValueSpace(hifi_mode).Range != nil")
	}
	want := []Mode{
		{Label: "Normal", Code: "0"},
		{Label: "High Impedance", Code: "1"},
		{Label: "AUX", Code: "2"},
	}
	if len(space.Modes) != len(want) {
		t.Fatalf("hifi_mode modes = %v, want %v", space.Modes, want)
	}
	for i := range want {
		if space.Modes[i] != want[i] {
			t.Errorf("modes[%d] = %+v, want %+v", i, space.Modes[i], want[i])
		}
	}
}

func TestValueSpace_Unsupported(t *testing.T) {
	base := setupHardware(t, "avc_volume") // no hifi_mode
	c := newTestController(t, base, newMockStore())

	if _, ok := c.ValueSpace(FeatureHifiMode); ok {
		t.Error("ValueSpace(hifi_mode) ok = true, want false")
	}
}

func TestSetValue_VolumeRoundTrip(t *testing.T) {
	base := setupHardware(t, "avc_volume")
	store := newMockStore()
	c := newTestController(t, base, store)
	ctx := context.Background()

	for v := int32(-24); v <= 0; v++ {
		t.Run(fmt.Sprintf("volume_%d", v), func(t *testing.T) {
			if !c.SetValue(ctx, FeatureAVCVolume, v) {
				t.Fatalf("SetValue(%d) = false", v)
			}
			if got := c.GetValue(ctx, FeatureAVCVolume); got != v {
				t.Errorf("GetValue() = %d, want %d", got, v)
			}
			// Hardware holds the attenuation magnitude.
			wantFile := strconv.FormatInt(int64(-v), 10)
			if got := readHardwareFile(t, filepath.Join(base, "avc_volume")); got != wantFile {
				t.Errorf("control file = %q, want %q", got, wantFile)
			}
		})
	}
}

func TestSetValue_ModeNoTransform(t *testing.T) {
	base := setupHardware(t, "hifi_mode")
	c := newTestController(t, base, newMockStore())
	ctx := context.Background()

	if !c.SetValue(ctx, FeatureHifiMode, 1) {
		t.Fatal("SetValue(hifi_mode, 1) = false")
	}
	if got := c.GetValue(ctx, FeatureHifiMode); got != 1 {
		t.Errorf("GetValue() = %d, want 1", got)
	}
	if got := readHardwareFile(t, filepath.Join(base, "hifi_mode")); got != "1" {
		t.Errorf("control file = %q, want %q", got, "1")
	}
}

func TestSetValue_Unsupported(t *testing.T) {
	base := setupHardware(t, "avc_volume") // no hifi_mode
	store := newMockStore()
	c := newTestController(t, base, store)

	if c.SetValue(context.Background(), FeatureHifiMode, 1) {
		t.Error("SetValue(hifi_mode) = true, want false")
	}
	// No file may be created and no property touched.
	if _, err := os.Stat(filepath.Join(base, "hifi_mode")); !errors.Is(err, os.ErrNotExist) {
		t.Error("SetValue on unsupported feature touched the control file")
	}
	if store.has(PropKeyHifiMode) {
		t.Error("SetValue on unsupported feature touched the property store")
	}
}

func TestGetValue_Unsupported(t *testing.T) {
	base := setupHardware(t, "avc_volume")
	c := newTestController(t, base, newMockStore())

	if got := c.GetValue(context.Background(), FeatureHifiMode); got != -1 {
		t.Errorf("GetValue(hifi_mode) = %d, want -1", got)
	}
}

func TestGetValue_DefaultFallback(t *testing.T) {
	base := setupHardware(t, "avc_volume")
	store := newMockStore()
	c := newTestController(t, base, store)
	ctx := context.Background()

	// Key never set after priming stores the default, so corrupt it to
	// exercise the malformed path too.
	store.values[PropKeyAVCVolume] = "not-a-number"
	if got := c.GetValue(ctx, FeatureAVCVolume); got != 0 {
		t.Errorf("GetValue() with malformed property = %d, want 0", got)
	}

	delete(store.values, PropKeyAVCVolume)
	if got := c.GetValue(ctx, FeatureAVCVolume); got != 0 {
		t.Errorf("GetValue() with missing property = %d, want 0", got)
	}
}

func TestSetValue_NoRangeValidation(t *testing.T) {
	// Out-of-range values are written through as-is; hardware clamps.
	base := setupHardware(t, "avc_volume")
	c := newTestController(t, base, newMockStore())
	ctx := context.Background()

	if !c.SetValue(ctx, FeatureAVCVolume, -99) {
		t.Fatal("SetValue(-99) = false, want true")
	}
	if got := readHardwareFile(t, filepath.Join(base, "avc_volume")); got != "99" {
		t.Errorf("control file = %q, want %q", got, "99")
	}
	if got := c.GetValue(ctx, FeatureAVCVolume); got != -99 {
		t.Errorf("GetValue() = %d, want -99", got)
	}
}

func TestSetValue_PropertyWriteFailure(t *testing.T) {
	base := setupHardware(t, "avc_volume")
	store := newMockStore()
	c := newTestController(t, base, store)

	store.setErr = errors.New("disk full")
	if c.SetValue(context.Background(), FeatureAVCVolume, -5) {
		t.Error("SetValue() = true despite property write failure")
	}
}

func TestOnChange(t *testing.T) {
	base := setupHardware(t, "avc_volume", "hifi_mode")
	store := newMockStore()

	type change struct {
		feature Feature
		value   int32
	}
	var changes []change

	c, err := New(context.Background(), Deps{
		BasePath: base,
		Props:    store,
		OnChange: func(f Feature, v int32) {
			changes = append(changes, change{f, v})
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Priming fires once per supported feature.
	if len(changes) != 2 {
		t.Fatalf("got %d priming changes, want 2", len(changes))
	}

	c.SetValue(context.Background(), FeatureAVCVolume, -7)
	last := changes[len(changes)-1]
	if last.feature != FeatureAVCVolume || last.value != -7 {
		t.Errorf("last change = %+v, want {avc_volume -7}", last)
	}

	// Failed sets must not fire the hook.
	before := len(changes)
	c.SetValue(context.Background(), FeatureHifiMode, 1)
	store.setErr = errors.New("store down")
	c.SetValue(context.Background(), FeatureHifiMode, 2)
	if len(changes) != before+1 {
		t.Errorf("got %d changes after failed set, want %d", len(changes), before+1)
	}
}

func TestListSupportedFeatures_ReturnsCopy(t *testing.T) {
	base := setupHardware(t, "avc_volume", "hifi_mode")
	c := newTestController(t, base, newMockStore())

	features := c.ListSupportedFeatures()
	features[0] = Feature("mutated")

	if got := c.ListSupportedFeatures()[0]; got != FeatureAVCVolume {
		t.Errorf("catalog mutated through returned slice: %v", got)
	}
}
