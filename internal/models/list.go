package models

type StatusFilter string

const (
	StatusAll          StatusFilter = ""
	StatusCompleted    StatusFilter = "completed"
	StatusNotCompleted StatusFilter = "not_completed"
)

// ParseStatus never fails, anything unrecognised means no status filter
func ParseStatus(s string) StatusFilter {
	switch StatusFilter(s) {
	case StatusCompleted, StatusNotCompleted:
		return StatusFilter(s)
	}
	return StatusAll
}

type SortCriteria string

const (
	SortDefault  SortCriteria = ""
	SortDate     SortCriteria = "date"
	SortPriority SortCriteria = "priority"
	SortTitle    SortCriteria = "title"
)

func ParseSort(s string) SortCriteria {
	switch SortCriteria(s) {
	case SortDate, SortPriority, SortTitle:
		return SortCriteria(s)
	}
	return SortDefault
}

// ListOptions narrows and orders an owner's tasks. Query and Status combine
// with AND, Sort decides the ordering of whatever is left.
type ListOptions struct {
	Query  string
	Status StatusFilter
	Sort   SortCriteria
}
