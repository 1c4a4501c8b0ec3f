package adapter

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// DecodeParams decodes adapter-specific settings from Config.Params into out.
// Scalars are weakly typed so values read from env vars ("true", "8080")
// decode into bool and int fields. A nil map leaves out untouched.
func DecodeParams(params map[string]any, out any) error {
	if params == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to create params decoder: %w", err)
	}

	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("invalid adapter params: %w", err)
	}
	return nil
}
