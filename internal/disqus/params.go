package disqus

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
)

// Params are the keyword arguments of a remote call. Values may be strings,
// booleans, numbers, fmt.Stringers or slices of those; slices are sent as
// repeated keys.
type Params map[string]any

// Values form-encodes p. Both the GET query string and the POST body are
// built from it.
func (p Params) Values() (url.Values, error) {
	values := url.Values{}
	for _, key := range p.keys() {
		switch v := p[key].(type) {
		case nil:
			continue
		case []string:
			values[key] = append(values[key], v...)
		default:
			rv := reflect.ValueOf(v)
			if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
				for i := 0; i < rv.Len(); i++ {
					s, err := formatScalar(rv.Index(i).Interface())
					if err != nil {
						return nil, fmt.Errorf("param %q: %w", key, err)
					}
					values.Add(key, s)
				}
				continue
			}
			s, err := formatScalar(v)
			if err != nil {
				return nil, fmt.Errorf("param %q: %w", key, err)
			}
			values.Set(key, s)
		}
	}
	return values, nil
}

// Encode returns p as a URL query string with keys in sorted order.
func (p Params) Encode() (string, error) {
	values, err := p.Values()
	if err != nil {
		return "", err
	}
	return values.Encode(), nil
}

func (p Params) keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatScalar(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedParam, v)
}
