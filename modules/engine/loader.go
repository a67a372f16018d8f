package engine

import (
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/fathomsearch/fathom/pkg/util/log"
)

// Factory builds a fresh engine instance for one config entry.
type Factory func(cfg Config) (Engine, error)

var factories = map[string]Factory{}

// RegisterFactory makes an engine implementation available to the loader
// under the given type name. Called from engine implementation init funcs.
func RegisterFactory(engineType string, f Factory) {
	factories[engineType] = f
}

// Load builds a registry from the configured engine list. Disabled entries
// are skipped here, at load time. Unknown engine types and failed
// validations are aggregated; any error refuses startup.
func Load(cfg RegistryConfig) (*Registry, error) {
	reg := NewRegistry()

	var loadErr error
	for _, ec := range cfg.Engines {
		if ec.Disabled {
			level.Debug(log.Logger).Log("msg", "engine disabled", "engine", ec.Name)
			continue
		}

		engineType := ec.Engine
		if engineType == "" {
			engineType = ec.Name
		}

		factory, ok := factories[engineType]
		if !ok {
			loadErr = multierr.Append(loadErr, errors.Errorf("unknown engine type %q for engine %q", engineType, ec.Name))
			continue
		}

		e, err := factory(ec)
		if err != nil {
			loadErr = multierr.Append(loadErr, errors.Wrapf(err, "building engine %q", ec.Name))
			continue
		}

		if v, ok := e.(Validator); ok {
			if err := v.Validate(ec); err != nil {
				loadErr = multierr.Append(loadErr, errors.Wrapf(err, "validating engine %q", ec.Name))
				continue
			}
		}
		if i, ok := e.(Initializer); ok {
			if err := i.Init(ec); err != nil {
				loadErr = multierr.Append(loadErr, errors.Wrapf(err, "initializing engine %q", ec.Name))
				continue
			}
		}

		reg.Add(e, ec)
		level.Info(log.Logger).Log("msg", "engine loaded", "engine", ec.Name, "shortcut", ec.Shortcut)
	}

	if loadErr != nil {
		return nil, loadErr
	}
	return reg, nil
}
