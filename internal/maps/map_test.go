package maps

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewValidatesCellCount(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		cells   string
		wantErr bool
	}{
		{"exact", 2, 2, "0  0", false},
		{"too short", 2, 2, "0 0", true},
		{"too long", 2, 2, "0  0 ", true},
		{"zero width", 0, 2, "", true},
		{"bad symbol", 2, 1, "0x", true},
		{"all empty", 3, 1, "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.w, tt.h, tt.cells)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("New(%d, %d, %q) error: %v", tt.w, tt.h, tt.cells, err)
				}
				if m.Width*m.Height != len(tt.cells) {
					t.Errorf("grid %dx%d does not cover %d cells", m.Width, m.Height, len(tt.cells))
				}
				return
			}
			var malformed *MalformedMapError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedMapError, got %v", err)
			}
		})
	}
}

func TestIsSolidOutOfRange(t *testing.T) {
	m, err := New(2, 2, "0  1")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		i, j int
		want bool
	}{
		{0, 0, true},
		{1, 0, false},
		{0, 1, false},
		{1, 1, true},
		{-1, 0, false},
		{0, -1, false},
		{2, 0, false},
		{0, 2, false},
		{100, 100, false},
	}
	for _, tt := range tests {
		if got := m.IsSolid(tt.i, tt.j); got != tt.want {
			t.Errorf("IsSolid(%d,%d) = %v, want %v", tt.i, tt.j, got, tt.want)
		}
	}
}

func TestSymbolAndPaletteIndex(t *testing.T) {
	m, err := New(3, 1, "7 2")
	if err != nil {
		t.Fatal(err)
	}

	if s, ok := m.SymbolAt(1, 0); !ok || !s.IsEmpty() {
		t.Errorf("SymbolAt(1,0) = %q,%v, want empty", s, ok)
	}
	if idx, ok := m.PaletteIndex(0, 0); !ok || idx != 7 {
		t.Errorf("PaletteIndex(0,0) = %d,%v, want 7", idx, ok)
	}
	if _, ok := m.PaletteIndex(1, 0); ok {
		t.Error("empty cell should have no palette index")
	}
	if got := m.MaxPaletteIndex(); got != 7 {
		t.Errorf("MaxPaletteIndex = %d, want 7", got)
	}
}

func TestCanStand(t *testing.T) {
	m := DefaultMap()
	if !m.CanStand(m.SpawnX, m.SpawnY) {
		t.Fatal("spawn must be on an empty cell")
	}
	if m.CanStand(0.5, 0.5) {
		t.Error("corner wall should block")
	}
	if m.CanStand(-0.1, 3) || m.CanStand(3, 16.2) {
		t.Error("positions outside the map should block")
	}
}

func TestDefaultMap(t *testing.T) {
	m := DefaultMap()
	if m.Width != 16 || m.Height != 16 {
		t.Fatalf("size %dx%d, want 16x16", m.Width, m.Height)
	}
	if got := strings.Join(m.Rows(), ""); got != strings.Join(defaultRows, "") {
		t.Error("Rows does not reproduce the sample level")
	}
	if m.MaxPaletteIndex() != 3 {
		t.Errorf("MaxPaletteIndex = %d, want 3", m.MaxPaletteIndex())
	}
}

const testMapJSON = `{
  "name": "Box",
  "width": 4,
  "height": 3,
  "spawn": {"x": 1.5, "y": 1.5},
  "heading": 0.5,
  "rows": ["0000", "0  1", "0000"],
  "legend": {"0": {"color": "#112233"}, "1": {"texture": 2}}
}`

func TestParseMap(t *testing.T) {
	m, err := ParseMap([]byte(testMapJSON))
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "Box" || m.Heading != 0.5 {
		t.Errorf("header = %q/%v", m.Name, m.Heading)
	}
	if l := m.Legend[0]; l.Color != "#112233" || l.Texture != -1 {
		t.Errorf("legend[0] = %+v", l)
	}
	if l := m.Legend[1]; l.Texture != 2 {
		t.Errorf("legend[1] = %+v", l)
	}
	if !m.IsSolid(3, 1) {
		t.Error("expected wall at (3,1)")
	}
}

func TestParseMapRejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"short row", `{"name":"x","width":3,"height":2,"spawn":{"x":1.5,"y":0.5},"rows":["0 0","00"]}`},
		{"spawn in wall", `{"name":"x","width":2,"height":1,"spawn":{"x":0.5,"y":0.5},"rows":["0 "]}`},
		{"bad legend key", `{"name":"x","width":2,"height":1,"spawn":{"x":1.5,"y":0.5},"rows":["0 "],"legend":{"a":{}}}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMap([]byte(tt.json)); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := ParseMap([]byte(tests[0].json))
	var malformed *MalformedMapError
	if !errors.As(err, &malformed) {
		t.Errorf("short row should be a MalformedMapError, got %v", err)
	}
}

func TestLoadMaps(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "box.json"), []byte(testMapJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := MarshalMap(DefaultMap())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sample.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	all, err := LoadMaps(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("loaded %d maps, want 2", len(all))
	}
	if all["Sample"].SpawnX != 3.456 {
		t.Errorf("sample spawn x = %v", all["Sample"].SpawnX)
	}

	if err := os.WriteFile(filepath.Join(dir, "dup.json"), []byte(testMapJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMaps(dir); err == nil {
		t.Error("duplicate map names should be rejected")
	}
}
