// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package detector

import "strings"

// IOSErrorFragments is the normative five-fragment set from §6.6, shared
// with the Intent Router's has_cli_error check so both components agree on
// what counts as visible CLI error noise.
var IOSErrorFragments = []string{
	"% Invalid input",
	"% Incomplete command",
	"% Ambiguous command",
	"% Unknown command",
	"% Unrecognized",
}

// HasVisibleError reports whether output carries both a literal "%" and one
// of the normative IOS error fragments (§4.4.1 step 2 "has_cli_error").
func HasVisibleError(output string) bool {
	if !strings.Contains(output, "%") {
		return false
	}
	for _, frag := range IOSErrorFragments {
		if strings.Contains(output, frag) {
			return true
		}
	}
	return false
}
