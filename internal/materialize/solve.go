package materialize

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/messages"
)

var (
	// ErrUnsatisfiable reports a package for which no build satisfies every constraint.
	ErrUnsatisfiable = errors.New("unsatisfiable")
	// ErrConflict reports a dependency constraint that rules out an already selected build.
	ErrConflict = errors.New("conflicting requirements")
)

// Solve picks one build per package reachable from requests. Selection is greedy and
// breadth-first: each package gets the highest version (then build number) that satisfies every
// constraint seen so far. A constraint arriving after its package was selected and excluding that
// build is reported as ErrConflict. Virtual packages (`__glibc`, `__osx`...) are assumed present.
func Solve(index *Index, requests []matchspec.Spec) ([]PackageInfo, error) {
	constraints := map[string][]matchspec.Spec{}
	pinned := map[string]string{}
	selected := map[string]PackageInfo{}
	queued := map[string]bool{}
	var queue []string

	for _, req := range requests {
		key := req.Name.Normalized()
		constraints[key] = append(constraints[key], req)
		if req.Channel != "" {
			pinned[key] = req.Channel
		}
		if !queued[key] {
			queued[key] = true
			queue = append(queue, key)
		}
	}

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		pick, ok := best(index.candidates(key, pinned[key]), constraints[key])
		if !ok {
			return nil, fmt.Errorf(messages.MaterializeUnsatisfiableFmt, ErrUnsatisfiable, key, describe(constraints[key]))
		}
		selected[key] = pick

		for _, raw := range pick.Depends {
			dep, err := matchspec.ParseDependency(raw)
			if err != nil {
				return nil, fmt.Errorf(messages.MaterializeDependencyFmt, pick.Key(), raw, err)
			}
			depKey := dep.Name.Normalized()
			if strings.HasPrefix(depKey, "__") {
				continue
			}
			constraints[depKey] = append(constraints[depKey], dep)
			if chosen, ok := selected[depKey]; ok {
				if !dep.Matches(chosen.Version) {
					return nil, fmt.Errorf(messages.MaterializeConflictFmt, ErrConflict, pick.Key(), raw, chosen.Key())
				}
				continue
			}
			if !queued[depKey] {
				queued[depKey] = true
				queue = append(queue, depKey)
			}
		}
	}

	out := make([]PackageInfo, 0, len(selected))
	for _, pkg := range selected {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].normalized() < out[j].normalized() })
	return out, nil
}

func best(candidates []PackageInfo, constraints []matchspec.Spec) (PackageInfo, bool) {
	var pick PackageInfo
	found := false
	for _, candidate := range candidates {
		if !satisfiesAll(candidate, constraints) {
			continue
		}
		if !found || newer(candidate, pick) {
			pick = candidate
			found = true
		}
	}
	return pick, found
}

func newer(a PackageInfo, b PackageInfo) bool {
	if c := compareVersions(a.Version, b.Version); c != 0 {
		return c > 0
	}
	if a.BuildNumber != b.BuildNumber {
		return a.BuildNumber > b.BuildNumber
	}
	return a.Filename > b.Filename
}

func satisfiesAll(pkg PackageInfo, constraints []matchspec.Spec) bool {
	for _, c := range constraints {
		if !c.Matches(pkg.Version) {
			return false
		}
	}
	return true
}

func describe(constraints []matchspec.Spec) string {
	parts := make([]string, 0, len(constraints))
	for _, c := range constraints {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}
