package universities

import "errors"

var ErrNotFound = errors.New("university not found")

type University struct {
	ID       int64
	Name     string
	Campuses []Campus
}

type Campus struct {
	ID           int64
	UniversityID int64
	Name         string
}
