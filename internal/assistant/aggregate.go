package assistant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Dataset is the tabular data handed to the assistant: one company, one
// month. The interpreter below receives nothing else — no credentials,
// network or filesystem are reachable from the execution path.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Instruction is the constrained aggregation the model is asked to emit
// instead of runnable code. Only the fixed operation set below is
// interpretable; anything else is rejected.
type Instruction struct {
	Op      string `json:"op"`
	Column  string `json:"column"`
	GroupBy string `json:"group_by,omitempty"`
}

const (
	OpSum   = "sum"
	OpAvg   = "avg"
	OpCount = "count"
	OpMin   = "min"
	OpMax   = "max"
)

func (d Dataset) columnIndex(name string) (int, error) {
	for i, col := range d.Columns {
		if strings.EqualFold(col, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown column %q", name)
}

// Execute runs a single aggregation instruction over the dataset and
// returns a formatted answer fragment.
func Execute(ds Dataset, ins Instruction) (string, error) {
	switch ins.Op {
	case OpSum, OpAvg, OpCount, OpMin, OpMax:
	default:
		return "", fmt.Errorf("unsupported operation %q", ins.Op)
	}

	if ins.Op == OpCount && ins.Column == "" {
		if ins.GroupBy != "" {
			return executeGrouped(ds, ins)
		}
		return fmt.Sprintf("count = %d", len(ds.Rows)), nil
	}

	colIdx, err := ds.columnIndex(ins.Column)
	if err != nil {
		return "", err
	}

	if ins.GroupBy != "" {
		return executeGrouped(ds, ins)
	}

	result, err := aggregate(ds.Rows, colIdx, ins.Op)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s) = %s", ins.Op, ds.Columns[colIdx], result), nil
}

func executeGrouped(ds Dataset, ins Instruction) (string, error) {
	groupIdx, err := ds.columnIndex(ins.GroupBy)
	if err != nil {
		return "", err
	}

	colIdx := -1
	if ins.Column != "" {
		colIdx, err = ds.columnIndex(ins.Column)
		if err != nil {
			return "", err
		}
	}

	groups := map[string][][]string{}
	for _, row := range ds.Rows {
		if groupIdx >= len(row) {
			continue
		}
		key := row[groupIdx]
		groups[key] = append(groups[key], row)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		if ins.Op == OpCount && colIdx < 0 {
			lines = append(lines, fmt.Sprintf("%s: %d", key, len(groups[key])))
			continue
		}
		result, err := aggregate(groups[key], colIdx, ins.Op)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s: %s", key, result))
	}
	return strings.Join(lines, "\n"), nil
}

func aggregate(rows [][]string, colIdx int, op string) (string, error) {
	if op == OpCount {
		return fmt.Sprintf("%d", len(rows)), nil
	}

	values := make([]decimal.Decimal, 0, len(rows))
	for _, row := range rows {
		if colIdx >= len(row) {
			continue
		}
		value, err := decimal.NewFromString(row[colIdx])
		if err != nil {
			return "", fmt.Errorf("non-numeric value %q", row[colIdx])
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return "0", nil
	}

	switch op {
	case OpSum:
		return decimal.Sum(values[0], values[1:]...).String(), nil
	case OpAvg:
		sum := decimal.Sum(values[0], values[1:]...)
		return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).String(), nil
	case OpMin:
		min := values[0]
		for _, v := range values[1:] {
			if v.LessThan(min) {
				min = v
			}
		}
		return min.String(), nil
	case OpMax:
		max := values[0]
		for _, v := range values[1:] {
			if v.GreaterThan(max) {
				max = v
			}
		}
		return max.String(), nil
	}
	return "", fmt.Errorf("unsupported operation %q", op)
}
