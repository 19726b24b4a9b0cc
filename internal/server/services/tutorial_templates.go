package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
)

// fallbackDisplayName is used when the profile has no username.
const fallbackDisplayName = "there"

type tutorialTemplate struct {
	title string
	// personal, when set, is a format with one %s for the display name.
	personal    string
	description string
	priority    string
}

var tutorialTemplates = [models.TutorialTaskCount]tutorialTemplate{
	{
		title:    "Welcome to TaskFlow AI!",
		personal: "Welcome to TaskFlow AI, %s!",
		priority: models.PriorityHigh,
		description: `Welcome aboard! This short tutorial walks you through the essentials.

- [ ] Read through this task
- [ ] Open the task details panel
- [ ] Mark this task as completed when you are done`,
	},
	{
		title:    "Create Your First Real Task",
		priority: models.PriorityMedium,
		description: `Add something you actually need to get done.

- [ ] Click "New Task"
- [ ] Give it a clear title
- [ ] Pick a priority and a deadline
- [ ] Save it and find it on the board`,
	},
	{
		title:    "Explore Task Details & Checklists",
		priority: models.PriorityMedium,
		description: `Tasks can hold notes and checklists like this one.

- [ ] Open a task to see its details
- [ ] Tick an item in this checklist
- [ ] Drag the task to the "In Progress" column`,
	},
	{
		title:    "Use AI Task Decomposition",
		priority: models.PriorityMedium,
		description: `Let the assistant break a large goal into steps.

- [ ] Open the AI decomposition tool
- [ ] Describe a goal in one sentence
- [ ] Review the suggested subtasks
- [ ] Add the ones you like to your board`,
	},
	{
		title:    "AI Note Generator",
		priority: models.PriorityLow,
		description: `Turn rough meeting notes into a tidy summary.

- [ ] Open the notes section
- [ ] Paste or dictate some notes
- [ ] Generate a summary and save it`,
	},
	{
		title:    "You're All Set!",
		personal: "You're All Set, %s!",
		priority: models.PriorityLow,
		description: `That's the tour. You can restart this tutorial any time from Settings.

- [ ] Customize your board colors in Settings
- [ ] Complete the remaining tutorial tasks
- [ ] Delete or archive the tutorial when you no longer need it`,
	},
}

// titleFor returns the title of t for a user called name. Long names are cut
// so the title stays within models.MaxTitleLength.
func (t tutorialTemplate) titleFor(name string) string {
	if t.personal == "" {
		return t.title
	}
	room := models.MaxTitleLength - utf8.RuneCountInString(strings.Replace(t.personal, "%s", "", 1))
	return fmt.Sprintf(t.personal, truncateRunes(name, room))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// TutorialTitles returns the six non-personalized titles in template order.
func TutorialTitles() []string {
	out := make([]string, 0, len(tutorialTemplates))
	for _, t := range tutorialTemplates {
		out = append(out, t.title)
	}
	return out
}

// tutorialTitleSet is every title a tutorial task for name may carry: the
// originals plus the personalized variants, without duplicates.
func tutorialTitleSet(name string) []string {
	seen := make(map[string]bool, len(tutorialTemplates)+2)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, t := range tutorialTemplates {
		if t.personal != "" {
			add(t.titleFor(name))
		}
	}
	for _, t := range tutorialTemplates {
		add(t.title)
	}
	return out
}
