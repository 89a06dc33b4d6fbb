package stdlib

import (
	"fmt"
	"iron/internal/object"
	"iron/internal/runtime"
	"regexp"
)

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

func stringArray(items []string) object.Array {
	arr := object.NewArray()
	for _, s := range items {
		arr.Push(object.String(s))
	}
	return arr
}

// RegexModule is std::regex. Every function takes the subject string first
// and the pattern second.
func RegexModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("matches", func(s, pattern string) (bool, error) {
			re, err := compile(pattern)
			if err != nil {
				return false, err
			}
			return re.MatchString(s), nil
		}).
		MustRegister("index_of", func(s, pattern string) (int32, error) {
			re, err := compile(pattern)
			if err != nil {
				return 0, err
			}
			loc := re.FindStringIndex(s)
			if loc == nil {
				return -1, nil
			}
			return int32(loc[0]), nil
		}).
		MustRegister("find_all", func(s, pattern string) (object.Array, error) {
			re, err := compile(pattern)
			if err != nil {
				return object.Array{}, err
			}
			return stringArray(re.FindAllString(s, -1)), nil
		}).
		MustRegister("find_groups", func(s, pattern string) (object.Array, error) {
			re, err := compile(pattern)
			if err != nil {
				return object.Array{}, err
			}
			arr := object.NewArray()
			for _, m := range re.FindAllStringSubmatch(s, -1) {
				arr.Push(object.New(stringArray(m)))
			}
			return arr, nil
		}).
		MustRegister("split", func(s, pattern string) (object.Array, error) {
			re, err := compile(pattern)
			if err != nil {
				return object.Array{}, err
			}
			return stringArray(re.Split(s, -1)), nil
		}).
		MustRegister("replace_all", func(s, pattern, replacement string) (string, error) {
			re, err := compile(pattern)
			if err != nil {
				return "", err
			}
			return re.ReplaceAllString(s, replacement), nil
		})
}
