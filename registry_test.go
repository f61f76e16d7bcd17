package revenue

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const groupsCSV = "\ufeff Ticker ,NAME, Sector\n2330, 台積電 ,半導體\n3533,嘉澤,連接器\n2317,鴻海,連接器\n3533,嘉澤電子,連接器\n"

func TestDecodeRegistry(t *testing.T) {
	reg, err := DecodeRegistry(strings.NewReader(groupsCSV))
	if err != nil {
		t.Fatalf("DecodeRegistry() unexpected error = %v", err)
	}
	want := []Entry{
		{"2330", "台積電", "半導體"},
		{"3533", "嘉澤", "連接器"},
		{"2317", "鴻海", "連接器"},
		{"3533", "嘉澤電子", "連接器"},
	}
	if got := reg.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
	if got := reg.Sectors(); !reflect.DeepEqual(got, []string{"半導體", "連接器"}) {
		t.Errorf("Sectors() = %v", got)
	}
	if got := reg.Tickers("連接器"); !reflect.DeepEqual(got, []string{"3533", "2317"}) {
		t.Errorf("Tickers() = %v, want [3533 2317]", got)
	}
	// last row wins
	if got, _ := reg.Name("3533"); got != "嘉澤電子" {
		t.Errorf("Name(3533) = %q, want %q", got, "嘉澤電子")
	}
	if _, ok := reg.Name("0000"); ok {
		t.Errorf("Name(0000) found an unknown ticker")
	}
}

func TestDecodeRegistry_Missing(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		missing []string
	}{
		{"no name", "ticker,sector\n2330,半導體\n", []string{"name"}},
		{"empty", "", []string{"ticker", "name", "sector"}},
		{"wrong header", "id,label,group\n", []string{"ticker", "name", "sector"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRegistry(strings.NewReader(tt.csv))
			var serr *SchemaError
			if !errors.As(err, &serr) {
				t.Fatalf("DecodeRegistry() error = %v, want a *SchemaError", err)
			}
			if !reflect.DeepEqual(serr.Missing, tt.missing) {
				t.Errorf("Missing = %v, want %v", serr.Missing, tt.missing)
			}
		})
	}
}

func TestDecodeRegistry_Lenient(t *testing.T) {
	// extra columns, short rows and empty sectors are accepted
	reg, err := DecodeRegistry(strings.NewReader("sector,ticker,name,note\n,1101,台泥,x\n連接器,2317\n"))
	if err != nil {
		t.Fatalf("DecodeRegistry() unexpected error = %v", err)
	}
	want := []Entry{{"1101", "台泥", ""}, {"2317", "", "連接器"}}
	if got := reg.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.csv")
	if err := os.WriteFile(path, []byte("ticker,sector\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadRegistry(path)
	var serr *SchemaError
	if !errors.As(err, &serr) || serr.Source != path {
		t.Errorf("LoadRegistry() error = %v, want a *SchemaError on %q", err, path)
	}
}

func TestFingerprint(t *testing.T) {
	a := NewRegistry(Entry{"1", "a", "s"})
	b := NewRegistry(Entry{"1", "a", "s"})
	c := NewRegistry(Entry{"1", "b", "s"})
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("same content, different fingerprints")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Errorf("different content, same fingerprint")
	}
}

func TestRegistry_Nil(t *testing.T) {
	var r *Registry
	if _, ok := r.Sector("2330"); ok {
		t.Errorf("nil Registry.Sector() found a sector")
	}
	if _, ok := r.Name("2330"); ok {
		t.Errorf("nil Registry.Name() found a name")
	}
	if r.Len() != 0 || r.Sectors() != nil || r.Tickers("半導體") != nil || r.Entries() != nil || r.Fingerprint() != "" {
		t.Errorf("nil Registry is not empty")
	}
}
