// ABOUTME: ClassNames joins CSS class fragments, skipping empty ones.
package ui

import "strings"

// ClassNames joins the non-empty class strings with single spaces.
func ClassNames(classes ...string) string {
	kept := make([]string, 0, len(classes))
	for _, c := range classes {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " ")
}
