package observability

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/anhkhoa289/vote-anti-trick/internal/apperrors"
)

const (
	// undefinedText renders an omitted data argument
	undefinedText = "undefined"
	// nullText renders a nil data argument
	nullText = "null"
	// compositeMarker renders maps, structs, slices and other composite values
	compositeMarker = "[object Object]"
)

// Stringify renders a log payload as text. It never panics: errors render as
// their message, primitives as their textual form and everything else as a
// fixed composite marker. Composite values are never traversed, so cyclic
// structures are safe.
func Stringify(v interface{}) (s string) {
	defer func() {
		if recover() != nil {
			s = compositeMarker
		}
	}()

	if v == nil {
		return nullText
	}
	if appErr, ok := v.(*apperrors.AppError); ok && appErr != nil {
		return appErr.Message
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(v)
	default:
		return compositeMarker
	}
}

func renderData(data []interface{}) string {
	if len(data) == 0 {
		return undefinedText
	}
	return Stringify(data[0])
}
