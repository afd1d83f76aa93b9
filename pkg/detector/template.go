// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package detector

import (
	"fmt"
	"strings"
)

// MissingVariableError is returned when a template references a variable
// absent from its variable map (§7 "MissingVariable"). The detector never
// silently substitutes a blank; it disables the offending pattern for the
// turn instead.
type MissingVariableError struct {
	Template string
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template references unknown variable %q", e.Variable)
}

// renderTemplate substitutes {name} placeholders from vars. A literal brace
// is written doubled, "{{" or "}}", matching the escaping rule in §4.2
// ("literal braces must be escaped"). An unresolved {name} is a
// MissingVariableError, never a silent blank.
func renderTemplate(tmpl string, vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder in template %q", tmpl)
			}
			name := tmpl[i+1 : i+1+end]
			val, ok := vars[name]
			if !ok {
				return "", &MissingVariableError{Template: tmpl, Variable: name}
			}
			b.WriteString(val)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			b.WriteByte('}')
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
