package materialize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/conn-castle/globalenv/internal/config"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/platform"
)

// ErrChannelUnavailable reports a channel without repodata for the requested platform.
var ErrChannelUnavailable = errors.New("channel unavailable")

// RepodataFile is the index file name inside each channel subdir.
const RepodataFile = "repodata.json"

// PackageInfo is one package build listed in a channel's repodata.
type PackageInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Build       string   `json:"build"`
	BuildNumber int      `json:"build_number"`
	Depends     []string `json:"depends"`
	Subdir      string   `json:"subdir,omitempty"`
	SHA256      string   `json:"sha256,omitempty"`
	Size        int64    `json:"size,omitempty"`

	// Filename is the archive name within the subdir.
	Filename string `json:"-"`
	// Channel is the channel the build was found in.
	Channel config.Channel `json:"-"`

	rank int
}

// Key identifies one exact build.
func (p PackageInfo) Key() string {
	return p.Name + "-" + p.Version + "-" + p.Build
}

func (p PackageInfo) normalized() string {
	return strings.ToLower(p.Name)
}

type repodata struct {
	Packages      map[string]PackageInfo `json:"packages"`
	CondaPackages map[string]PackageInfo `json:"packages.conda"`
}

// Index is the merged repodata of an ordered channel list.
type Index struct {
	byName map[string][]PackageInfo
	// searchRanks holds the ranks of channels that serve unpinned requests.
	searchRanks map[int]bool
}

// LoadIndex reads repodata for p and noarch from every channel. Search channels serve any request
// in priority order; pinned channels only serve requests that name them explicitly.
func LoadIndex(ctx context.Context, source Source, search []config.Channel, pinned []config.Channel, p platform.Platform) (*Index, error) {
	channels := append(append([]config.Channel(nil), search...), pinned...)
	subdirs := []string{string(p)}
	if p != platform.NoArch {
		subdirs = append(subdirs, string(platform.NoArch))
	}

	type result struct {
		packages []PackageInfo
		found    bool
	}
	results := make([][]result, len(channels))
	for i := range results {
		results[i] = make([]result, len(subdirs))
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultConcurrency)
	for ci, channel := range channels {
		for si, subdir := range subdirs {
			g.Go(func() error {
				pkgs, found, err := readRepodata(gctx, source, channel, subdir, ci)
				if err != nil {
					return err
				}
				results[ci][si] = result{packages: pkgs, found: found}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{byName: map[string][]PackageInfo{}, searchRanks: map[int]bool{}}
	for ci, channel := range channels {
		if ci < len(search) {
			idx.searchRanks[ci] = true
		}
		found := false
		for si := range subdirs {
			found = found || results[ci][si].found
			for _, pkg := range results[ci][si].packages {
				idx.byName[pkg.normalized()] = append(idx.byName[pkg.normalized()], pkg)
			}
		}
		if !found {
			return nil, fmt.Errorf(messages.MaterializeChannelUnavailableFmt, ErrChannelUnavailable, channel.Name, p)
		}
	}
	return idx, nil
}

func readRepodata(ctx context.Context, source Source, channel config.Channel, subdir string, rank int) ([]PackageInfo, bool, error) {
	location := source.Location(channel, subdir, RepodataFile)
	rc, err := source.Open(ctx, location)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = rc.Close() }()

	var data repodata
	if err := json.NewDecoder(rc).Decode(&data); err != nil {
		return nil, false, fmt.Errorf(messages.MaterializeDecodeRepodataFmt, location, err)
	}

	// .conda builds replace the .tar.bz2 build of the same name-version-build.
	byStem := map[string]PackageInfo{}
	add := func(entries map[string]PackageInfo) {
		for filename, pkg := range entries {
			pkg.Filename = filename
			pkg.Channel = channel
			pkg.rank = rank
			if pkg.Subdir == "" {
				pkg.Subdir = subdir
			}
			byStem[archiveStem(filename)] = pkg
		}
	}
	add(data.Packages)
	add(data.CondaPackages)

	out := make([]PackageInfo, 0, len(byStem))
	for _, pkg := range byStem {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, true, nil
}

// candidates returns the builds of name that a request may choose from. Pinned requests only see
// the named channel; otherwise the highest-priority search channel carrying the name wins.
func (idx *Index) candidates(name string, pinnedChannel string) []PackageInfo {
	all := idx.byName[strings.ToLower(name)]
	var out []PackageInfo
	if pinnedChannel != "" {
		for _, pkg := range all {
			if pkg.Channel.Name == pinnedChannel {
				out = append(out, pkg)
			}
		}
		return out
	}
	best := -1
	for _, pkg := range all {
		if idx.searchRanks[pkg.rank] && (best < 0 || pkg.rank < best) {
			best = pkg.rank
		}
	}
	for _, pkg := range all {
		if pkg.rank == best {
			out = append(out, pkg)
		}
	}
	return out
}

// Packages returns every indexed build of name.
func (idx *Index) Packages(name string) []PackageInfo {
	return append([]PackageInfo(nil), idx.byName[strings.ToLower(name)]...)
}
