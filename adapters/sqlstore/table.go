package sqlstore

import "regexp"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validTable(name string) bool {
	return identifier.MatchString(name)
}
