package models

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
)

type KanbanColors struct {
	TodoColor       string `json:"todoColor" bson:"todoColor"`
	PendingColor    string `json:"pendingColor" bson:"pendingColor"`
	InProgressColor string `json:"inProgressColor" bson:"inProgressColor"`
	CompletedColor  string `json:"completedColor" bson:"completedColor"`
}

type ThemeSettings struct {
	AccentColor  string `json:"accentColor" bson:"accentColor"`
	BorderRadius string `json:"borderRadius" bson:"borderRadius"`
	CardStyle    string `json:"cardStyle" bson:"cardStyle"`
	FontSize     string `json:"fontSize" bson:"fontSize"`
}

type UISettings struct {
	CompactMode    bool `json:"compactMode" bson:"compactMode"`
	ShowAnimations bool `json:"showAnimations" bson:"showAnimations"`
	HighContrast   bool `json:"highContrast" bson:"highContrast"`
}

// Preferences is the user's UI customization document.
type Preferences struct {
	Kanban KanbanColors  `json:"kanban" bson:"kanban"`
	Theme  ThemeSettings `json:"theme" bson:"theme"`
	UI     UISettings    `json:"ui" bson:"ui"`
}

// DefaultPreferences returns the teal-accented document served to users
// who have not saved anything yet.
func DefaultPreferences() Preferences {
	return Preferences{
		Kanban: KanbanColors{
			TodoColor:       "#3b82f6",
			PendingColor:    "#f59e0b",
			InProgressColor: "#8b5cf6",
			CompletedColor:  "#10b981",
		},
		Theme: ThemeSettings{
			AccentColor:  "#14b8a6",
			BorderRadius: "medium",
			CardStyle:    "modern",
			FontSize:     "medium",
		},
		UI: UISettings{
			CompactMode:    false,
			ShowAnimations: true,
			HighContrast:   false,
		},
	}
}

// MergePreferences decodes a stored document over the defaults. Keys present
// in raw win; anything missing keeps its default. Empty input, "null" and
// "{}" all yield the defaults.
func MergePreferences(raw []byte) (Preferences, error) {
	p := DefaultPreferences()
	if len(raw) == 0 || string(raw) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return DefaultPreferences(), fmt.Errorf("decode preferences: %w", err)
	}
	return p, nil
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var (
	sizes      = map[string]bool{"small": true, "medium": true, "large": true}
	cardStyles = map[string]bool{"modern": true, "classic": true, "minimal": true}
)

// Validate checks colors and enumerations. Errors wrap common.ErrorValidation.
func (p *Preferences) Validate() error {
	colors := []struct{ name, value string }{
		{"kanban.todoColor", p.Kanban.TodoColor},
		{"kanban.pendingColor", p.Kanban.PendingColor},
		{"kanban.inProgressColor", p.Kanban.InProgressColor},
		{"kanban.completedColor", p.Kanban.CompletedColor},
		{"theme.accentColor", p.Theme.AccentColor},
	}
	for _, c := range colors {
		if !hexColor.MatchString(c.value) {
			return fmt.Errorf("%w: %s must be a hex color, got %q", common.ErrorValidation, c.name, c.value)
		}
	}
	if !sizes[p.Theme.BorderRadius] {
		return fmt.Errorf("%w: unknown theme.borderRadius %q", common.ErrorValidation, p.Theme.BorderRadius)
	}
	if !cardStyles[p.Theme.CardStyle] {
		return fmt.Errorf("%w: unknown theme.cardStyle %q", common.ErrorValidation, p.Theme.CardStyle)
	}
	if !sizes[p.Theme.FontSize] {
		return fmt.Errorf("%w: unknown theme.fontSize %q", common.ErrorValidation, p.Theme.FontSize)
	}
	return nil
}
