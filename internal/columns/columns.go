// Package columns finds the header of a logical column in a loaded sheet.
//
// Resolution is two-tier: the ordered alias list is tried first with exact,
// case-sensitive matches, then an optional fixed position. The positions are
// a contract with the upstream spreadsheet layout. If the sheet's column
// order changes, the fallback silently points at a different column, so the
// name aliases should be kept complete.
package columns

import (
	"fmt"
	"strings"
)

// Table is anything with an ordered header. gota's dataframe.DataFrame
// satisfies it.
type Table interface {
	Names() []string
}

// NoPosition disables the positional fallback of a Role.
const NoPosition = -1

// absentPrefix starts the header of a placeholder column. A placeholder
// holds the offset of a role the source sheet did not have and never
// resolves, by name or by position.
const absentPrefix = "(absent) "

// IsAbsent reports whether header names a placeholder column.
func IsAbsent(header string) bool {
	return strings.HasPrefix(header, absentPrefix)
}

// Resolve returns the first candidate present in the header.
func Resolve(t Table, candidates ...string) (string, bool) {
	names := t.Names()
	for _, c := range candidates {
		for _, n := range names {
			if n == c {
				return n, true
			}
		}
	}
	return "", false
}

// ResolveByIndex returns the header at a zero-based offset.
func ResolveByIndex(t Table, index int) (string, bool) {
	names := t.Names()
	if index < 0 || index >= len(names) || IsAbsent(names[index]) {
		return "", false
	}
	return names[index], true
}

// Role is one logical column: a human label used in reports, the accepted
// header aliases in priority order and an optional fixed offset.
type Role struct {
	Label    string
	Aliases  []string
	Position int
}

// Canonical is the header the store writes back for this role.
func (r Role) Canonical() string {
	if len(r.Aliases) == 0 {
		return r.Label
	}
	return r.Aliases[0]
}

// Absent is the placeholder header of this role.
func (r Role) Absent() string {
	return absentPrefix + r.Label
}

func (r Role) Resolve(t Table) (string, bool) {
	if name, ok := Resolve(t, r.Aliases...); ok {
		return name, true
	}
	if r.Position == NoPosition {
		return "", false
	}
	return ResolveByIndex(t, r.Position)
}

// Resolution maps resolved roles to their column in one table.
type Resolution struct {
	found   map[string]string
	Missing []string
}

// Lookup resolves every role against t. Missing holds the labels of the
// roles that could not be found, in the order they were asked for.
func Lookup(t Table, roles ...Role) Resolution {
	res := Resolution{found: make(map[string]string, len(roles))}
	for _, r := range roles {
		if name, ok := r.Resolve(t); ok {
			res.found[r.Label] = name
			continue
		}
		res.Missing = append(res.Missing, r.Label)
	}
	return res
}

func (r Resolution) OK() bool { return len(r.Missing) == 0 }

// Column returns the header resolved for role. It is empty when the role
// was not found or never looked up.
func (r Resolution) Column(role Role) string {
	return r.found[role.Label]
}

func (r Resolution) Has(role Role) bool {
	_, ok := r.found[role.Label]
	return ok
}

// Err converts the missing roles into a *MissingError, or nil.
func (r Resolution) Err() error {
	if r.OK() {
		return nil
	}
	return &MissingError{Roles: r.Missing}
}

// MissingError names the logical columns a computation needed but could not find.
type MissingError struct {
	Roles []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("columns not found: %s", strings.Join(e.Roles, ", "))
}

// Merge concatenates the missing labels of several lookups without repeats.
func Merge(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, m := range l {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}
