package global

import (
	"fmt"
	"strings"

	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
)

// Target is one environment of a batch and the specs destined for it.
type Target struct {
	Name  names.EnvironmentName
	Specs []matchspec.Spec
}

// ResolveEnvironmentNames groups specs by target environment. With an explicit name every
// spec goes to that environment; otherwise each spec targets the environment named after its
// normalized package name. Targets keep the order in which they were first requested.
func ResolveEnvironmentNames(specs []matchspec.Spec, explicit names.EnvironmentName) ([]Target, error) {
	if explicit != "" {
		if _, err := names.ParseEnvironmentName(explicit.String()); err != nil {
			return nil, err
		}
		return []Target{{Name: explicit, Specs: append([]matchspec.Spec(nil), specs...)}}, nil
	}
	var targets []Target
	index := map[names.EnvironmentName]int{}
	for _, spec := range specs {
		name, err := names.ParseEnvironmentName(spec.Name.Normalized())
		if err != nil {
			return nil, err
		}
		idx, ok := index[name]
		if !ok {
			idx = len(targets)
			index[name] = idx
			targets = append(targets, Target{Name: name})
		}
		targets[idx].Specs = append(targets[idx].Specs, spec)
	}
	return targets, nil
}

// CheckExposeTargets rejects explicit mappings unless exactly one environment is targeted.
func CheckExposeTargets(targets []Target, mappings []names.Mapping) error {
	if len(mappings) == 0 || len(targets) == 1 {
		return nil
	}
	envs := make([]string, 0, len(targets))
	for _, target := range targets {
		envs = append(envs, target.Name.String())
	}
	return fmt.Errorf(messages.GlobalAmbiguousMappingFmt, ErrAmbiguousMapping, len(targets), strings.Join(envs, ", "))
}
