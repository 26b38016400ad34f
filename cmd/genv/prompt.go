package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/conn-castle/globalenv/internal/messages"
)

var confirmFunc = func(title string) (bool, error) {
	value := true
	form := huh.NewForm(huh.NewGroup(huh.NewConfirm().Title(title).Value(&value))).WithOutput(os.Stderr)
	err := form.Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return value, err
}

// confirmManifestCreation returns the prompt asked before the first manifest is created, or nil
// when no prompt should be shown.
func confirmManifestCreation(assumeYes bool) func() (bool, error) {
	if assumeYes || !isTerminal() {
		return nil
	}
	return func() (bool, error) {
		return confirmFunc(messages.ManifestCreatePromptTitle)
	}
}
