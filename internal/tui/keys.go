// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/bubbles/key"

// volumeStep is the gate change per key press.
const volumeStep = 0.05

type keyMap struct {
	Quit       key.Binding
	Pause      key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Peaks      key.Binding
}

func newKeyMap(canPause bool) keyMap {
	km := keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		Pause:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		VolumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolumeDown: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "volume down")),
		Peaks:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "peaks")),
	}
	km.Pause.SetEnabled(canPause)
	return km
}

func (km keyMap) helpText() string {
	s := ""
	for _, b := range []key.Binding{km.Pause, km.VolumeUp, km.VolumeDown, km.Peaks, km.Quit} {
		if !b.Enabled() {
			continue
		}
		if s != "" {
			s += "  "
		}
		h := b.Help()
		s += h.Key + " " + h.Desc
	}
	return s
}
