package forecast

import (
	"fmt"
	"sort"
	"strconv"
)

// Catalog is the JMA area tree. It is built once and never mutated.
type Catalog struct {
	Centers  map[string]Area
	Offices  map[string]Area
	Class10s map[string]Area
}

// NewCatalog returns an empty catalog ready to be filled by a loader.
func NewCatalog() *Catalog {
	return &Catalog{
		Centers:  make(map[string]Area),
		Offices:  make(map[string]Area),
		Class10s: make(map[string]Area),
	}
}

// Regions returns the top-level centers ordered by code.
func (c *Catalog) Regions() []Area {
	out := make([]Area, 0, len(c.Centers))
	for _, a := range c.Centers {
		out = append(out, a)
	}
	return sortByCode(out)
}

// Prefectures returns the offices under a center. Offices without a parent
// are not prefectures and are never listed.
func (c *Catalog) Prefectures(centerCode string) []Area {
	var out []Area
	for _, a := range c.Offices {
		if a.ParentCode != "" && a.ParentCode == centerCode {
			out = append(out, a)
		}
	}
	return sortByCode(out)
}

// SubAreas returns the class10 areas under an office.
func (c *Catalog) SubAreas(officeCode string) []Area {
	var out []Area
	for _, a := range c.Class10s {
		if a.ParentCode == officeCode {
			out = append(out, a)
		}
	}
	return sortByCode(out)
}

// Office looks up a prefecture-level office.
func (c *Catalog) Office(code string) (Area, bool) {
	a, ok := c.Offices[code]
	return a, ok
}

// PrefectureCode resolves the 6-digit code used by the forecast endpoint.
func (c *Catalog) PrefectureCode(officeCode string) (string, error) {
	a, ok := c.Offices[officeCode]
	if !ok || a.ParentCode == "" {
		return "", fmt.Errorf("%w: office %s", ErrUnknownArea, officeCode)
	}
	n, err := strconv.Atoi(officeCode)
	if err != nil || n < 0 {
		return "", fmt.Errorf("%w: office %s is not numeric", ErrUnknownArea, officeCode)
	}
	return fmt.Sprintf("%06d", n), nil
}

// All returns every node, centers first, then offices, then class10s.
func (c *Catalog) All() []Area {
	out := make([]Area, 0, len(c.Centers)+len(c.Offices)+len(c.Class10s))
	out = append(out, c.Regions()...)
	out = append(out, sortByCode(values(c.Offices))...)
	out = append(out, sortByCode(values(c.Class10s))...)
	return out
}

func values(m map[string]Area) []Area {
	out := make([]Area, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	return out
}

func sortByCode(areas []Area) []Area {
	sort.Slice(areas, func(i, j int) bool { return areas[i].Code < areas[j].Code })
	return areas
}
