// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package errorpatterns

import "fmt"

// PatternLoadError names the offending pattern and field when a source
// fails validation (§4.1, §7). Fatal at startup per §7.
type PatternLoadError struct {
	PatternID string
	Field     string
	Reason    string
}

func (e *PatternLoadError) Error() string {
	return fmt.Sprintf("pattern %q: invalid field %q: %s", e.PatternID, e.Field, e.Reason)
}

// NotFoundError is returned by Find for an unknown pattern ID.
type NotFoundError struct {
	PatternID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pattern %q not found", e.PatternID)
}
