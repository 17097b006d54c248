// Package navbar describes the static application header.
package navbar

import (
	"fmt"
	"io"
	"strings"
)

// Item is one entry of the user menu.
type Item struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Navbar is the header document. It holds no state.
type Navbar struct {
	Brand     string `json:"brand"`
	AvatarURL string `json:"avatar_url"`
	Menu      []Item `json:"menu"`
}

// Default returns the QuizApp header.
func Default() Navbar {
	return Navbar{
		Brand:     "QuizApp",
		AvatarURL: "https://img.daisyui.com/images/stock/photo-1534528741775-53994a69daeb.webp",
		Menu: []Item{
			{Label: "Profile", Href: "#profile"},
			{Label: "Settings", Href: "#settings"},
			{Label: "Logout", Href: "#logout"},
		},
	}
}

// Render writes a one-line terminal header followed by a rule.
func (n Navbar) Render(w io.Writer) error {
	labels := make([]string, len(n.Menu))
	for i, item := range n.Menu {
		labels[i] = item.Label
	}
	line := n.Brand
	if len(labels) > 0 {
		line = fmt.Sprintf("%s  |  %s", n.Brand, strings.Join(labels, " · "))
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", line, strings.Repeat("=", len([]rune(line))))
	return err
}
