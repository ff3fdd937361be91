package querybuilder

import "strings"

type CondType int

const (
	CondTypeAnd CondType = iota + 1
	CondTypeOr
)

func (c CondType) ToString() string {
	switch c {
	case CondTypeAnd:
		return "AND"
	case CondTypeOr:
		return "OR"
	default:
		return ""
	}
}

type Condition struct {
	condType CondType
	clause   string
	args     []interface{}
	subCond  []Condition
}

func buildCondition(conditions []Condition) (string, []interface{}) {
	parts := make([]string, 0, 2*len(conditions))
	args := make([]interface{}, 0)

	for i, cond := range conditions {
		if i > 0 {
			parts = append(parts, cond.condType.ToString())
		}
		if cond.subCond != nil {
			clause, subArgs := buildCondition(cond.subCond)
			parts = append(parts, "("+clause+")")
			args = append(args, subArgs...)
			continue
		}
		parts = append(parts, cond.clause)
		args = append(args, cond.args...)
	}

	return strings.Join(parts, " "), args
}
