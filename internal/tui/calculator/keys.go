package calculator

import "charm.land/bubbles/v2/key"

// KeyMap holds the calculator key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Toggle    key.Binding
	Increase  key.Binding
	Decrease  key.Binding
	SwitchTab key.Binding
	Next      key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the bindings shown in the hint bar.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "subir")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "bajar")),
		Select:    key.NewBinding(key.WithKeys("enter", "space", " "), key.WithHelp("enter", "elegir")),
		Toggle:    key.NewBinding(key.WithKeys("space", " ", "enter"), key.WithHelp("espacio", "marcar")),
		Increase:  key.NewBinding(key.WithKeys("right", "+", "l"), key.WithHelp("→/+", "más")),
		Decrease:  key.NewBinding(key.WithKeys("left", "-", "h"), key.WithHelp("←/−", "menos")),
		SwitchTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "cambiar campo")),
		Next:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "siguiente")),
		Back:      key.NewBinding(key.WithKeys("esc", "shift+tab"), key.WithHelp("esc", "atrás")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "salir")),
	}
}

// hints flattens bindings into key/description pairs for renderHintBar.
func hints(bs ...key.Binding) []string {
	pairs := make([]string, 0, len(bs)*2)
	for _, b := range bs {
		h := b.Help()
		pairs = append(pairs, h.Key, h.Desc)
	}
	return pairs
}
