package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/mlkit/document"
	mlerrors "github.com/randalmurphal/mlkit/errors"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode maps doc onto v, a pointer to a struct with yaml tags, and then
// checks its validate tags. Shape mismatches and validation failures wrap
// ErrInvalidConfig.
//
//	type TrainerConfig struct {
//	    Alpha   float64 `yaml:"alpha" validate:"gte=0,lte=1"`
//	    L1Ratio float64 `yaml:"l1_ratio" validate:"gte=0,lte=1"`
//	    Target  string  `yaml:"target_column" validate:"required"`
//	}
func Decode(doc *document.Document, v any) error {
	data, err := yaml.Marshal(doc.Map())
	if err != nil {
		return mlerrors.New("decode config", "", nil, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return mlerrors.New("decode config", "", mlerrors.ErrInvalidConfig, err)
	}

	if err := validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// v is not a struct; there is nothing to validate.
			return nil
		}
		return mlerrors.New("validate config", "", mlerrors.ErrInvalidConfig, err)
	}
	return nil
}

// DecodeFile reads path with the loader and decodes it into v.
func (l *Loader) DecodeFile(path string, v any) error {
	doc, err := l.Read(path)
	if err != nil {
		return err
	}
	if err := Decode(doc, v); err != nil {
		var opErr *mlerrors.OpError
		if errors.As(err, &opErr) {
			opErr.Path = path
		}
		l.logger.Error("config file failed validation", "path", path, "error", err)
		return err
	}
	return nil
}
