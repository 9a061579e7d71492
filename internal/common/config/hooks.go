package config

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		StringToStringMapHookFunc(),
	)),
}

// StringToStringMapHookFunc decodes "k1=v1,k2=v2" into a map[string]string, so that maps can be set
// from a single flag or environment variable.
func StringToStringMapHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(map[string]string{}) {
			return data, nil
		}
		return ParseKeyValuePairs(data.(string))
	}
}

// ParseKeyValuePairs parses a comma-separated list of key=value pairs.
func ParseKeyValuePairs(s string) (map[string]string, error) {
	result := map[string]string{}
	s = strings.TrimSpace(s)
	if s == "" {
		return result, nil
	}
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("expected key=value but got %q", pair)
		}
		result[key] = strings.TrimSpace(value)
	}
	return result, nil
}
