package frame

import (
	"fmt"
	"math"

	"github.com/soltixdb/lagforest/internal/utils"
)

// FromRecords builds a frame from row maps, as decoded from JSON request
// bodies. Column order follows columns; a column is numeric when every
// non-nil value converts to float64, otherwise text. Columns listed in
// textColumns are always text.
func FromRecords(records []map[string]interface{}, columns []string, textColumns ...string) (*Frame, error) {
	forceText := make(map[string]bool, len(textColumns))
	for _, c := range textColumns {
		forceText[c] = true
	}

	f := New()
	for _, name := range columns {
		numeric := !forceText[name]
		if numeric {
			for _, rec := range records {
				v, ok := rec[name]
				if !ok || v == nil {
					continue
				}
				if _, ok := utils.ToFloat64(v); !ok {
					numeric = false
					break
				}
			}
		}

		if numeric {
			values := make([]float64, len(records))
			for i, rec := range records {
				v, ok := utils.ToFloat64(rec[name])
				if !ok {
					v = math.NaN()
				}
				values[i] = v
			}
			if err := f.SetFloats(name, values); err != nil {
				return nil, err
			}
			continue
		}

		values := make([]string, len(records))
		for i, rec := range records {
			switch v := rec[name].(type) {
			case nil:
			case string:
				values[i] = v
			default:
				values[i] = fmt.Sprint(v)
			}
		}
		if err := f.SetStrings(name, values); err != nil {
			return nil, err
		}
	}
	return f, nil
}
