package tech

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads a technology table from a TOML file.  Keys omitted from the
// file keep their cds_ff_mpt defaults, so a file can override a handful of
// constants without restating the whole table.
func Load(path string) (*Tech, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tech table: %w", err)
	}
	return FromTOML(data)
}

// FromTOML decodes a technology table from TOML bytes over the cds_ff_mpt
// defaults.
func FromTOML(data []byte) (*Tech, error) {
	t := CDSFFMPT()
	if err := toml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decode tech table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tech) validate() error {
	checks := []struct {
		name string
		v    int
	}{
		{"fin_h", t.FinH},
		{"fin_pitch", t.FinPitch},
		{"mp_h", t.MPH},
		{"md_w", t.MDW},
		{"cpo_h", t.CPOH},
		{"cpo_h_end", t.CPOHEnd},
		{"od_nfin_min", t.ODNfinMin},
		{"od_nfin_max", t.ODNfinMax},
		{"mx_area_min", t.MXAreaMin},
	}
	for _, c := range checks {
		if c.v <= 0 {
			return fmt.Errorf("tech table %q: %s must be positive, got %d", t.Name, c.name, c.v)
		}
	}
	if t.ODNfinMin > t.ODNfinMax {
		return fmt.Errorf("tech table %q: od_nfin_min %d > od_nfin_max %d", t.Name, t.ODNfinMin, t.ODNfinMax)
	}
	if t.FinH >= t.FinPitch {
		return fmt.Errorf("tech table %q: fin_h %d >= fin_pitch %d", t.Name, t.FinH, t.FinPitch)
	}
	return nil
}
