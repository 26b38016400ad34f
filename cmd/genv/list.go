package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/messages"
)

type listedMapping struct {
	Exposed    string `json:"exposed" yaml:"exposed"`
	Executable string `json:"executable" yaml:"executable"`
}

type listedEnvironment struct {
	Name         string          `json:"name" yaml:"name"`
	Channels     []string        `json:"channels" yaml:"channels"`
	Platform     string          `json:"platform,omitempty" yaml:"platform,omitempty"`
	Dependencies []string        `json:"dependencies" yaml:"dependencies"`
	Exposed      []listedMapping `json:"exposed" yaml:"exposed"`
}

func newListCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   messages.ListUse,
		Short: messages.ListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf(messages.ListFormatInvalidFmt, format)
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			m, err := manifest.Discover(a.paths.ManifestPath, nil)
			if err != nil {
				return err
			}
			envs, err := listEnvironments(m)
			if err != nil {
				return err
			}
			return writeList(cmd.OutOrStdout(), format, envs)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", messages.ListFlagFormat)
	return cmd
}

func listEnvironments(m *manifest.Manifest) ([]listedEnvironment, error) {
	out := []listedEnvironment{}
	for _, env := range m.Environments() {
		listed := listedEnvironment{
			Name:         env.Name().String(),
			Channels:     env.Channels(),
			Dependencies: []string{},
			Exposed:      []listedMapping{},
		}
		if p, ok := env.Platform(); ok {
			listed.Platform = p.String()
		}
		for _, dep := range env.Dependencies() {
			spec, err := dep.Spec()
			if err != nil {
				return nil, err
			}
			listed.Dependencies = append(listed.Dependencies, spec.String())
		}
		for _, mapping := range env.ExposedMappings() {
			listed.Exposed = append(listed.Exposed, listedMapping{Exposed: mapping.ExposedName().String(), Executable: mapping.Executable()})
		}
		out = append(out, listed)
	}
	return out, nil
}

func writeList(w io.Writer, format string, envs []listedEnvironment) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(envs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(envs); err != nil {
			return err
		}
		return enc.Close()
	}
	if len(envs) == 0 {
		_, err := fmt.Fprintln(w, messages.ListEmpty)
		return err
	}
	for _, env := range envs {
		_, _ = fmt.Fprintln(w, env.Name)
		_, _ = fmt.Fprintf(w, messages.ListChannelsFmt, strings.Join(env.Channels, ", "))
		if env.Platform != "" {
			_, _ = fmt.Fprintf(w, messages.ListPlatformFmt, env.Platform)
		}
		for _, dep := range env.Dependencies {
			_, _ = fmt.Fprintf(w, messages.ListDependencyFmt, dep)
		}
		for _, mapping := range env.Exposed {
			_, _ = fmt.Fprintf(w, messages.ListExposedFmt, mapping.Exposed, mapping.Executable)
		}
	}
	return nil
}
