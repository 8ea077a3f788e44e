package domain

import (
	"errors"
	"fmt"
)

// Validate checks the catalog invariants the engine relies on
func (c Catalog) Validate() error {
	var errs []error

	ids := make(map[string]bool, len(c.Facilities))
	for _, f := range c.Facilities {
		switch {
		case f.ID == "":
			errs = append(errs, fmt.Errorf("facility %q has no id", f.Name))
		case ids[f.ID]:
			errs = append(errs, fmt.Errorf("duplicate facility id %q", f.ID))
		}
		ids[f.ID] = true
		if f.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("facility %q: capacity must be positive", f.ID))
		}
		if f.Visitors < 0 {
			errs = append(errs, fmt.Errorf("facility %q: negative visitors", f.ID))
		}
		if !f.Category.Valid() {
			errs = append(errs, fmt.Errorf("facility %q: unknown category %q", f.ID, f.Category))
		}
	}

	areas := make(map[string]string, len(c.Events))
	for _, e := range c.Events {
		if !ids[e.AreaID] {
			errs = append(errs, fmt.Errorf("event %q references unknown facility %q", e.ID, e.AreaID))
		}
		if other, dup := areas[e.AreaID]; dup {
			errs = append(errs, fmt.Errorf("facility %q has two events (%q, %q)", e.AreaID, other, e.ID))
		}
		areas[e.AreaID] = e.ID
		if e.EndTime <= e.StartTime {
			errs = append(errs, fmt.Errorf("event %q ends before it starts", e.ID))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("domain: invalid catalog: %w", err)
	}
	return nil
}
