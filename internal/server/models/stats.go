package models

import "math"

// TutorialTaskCount is the size of the onboarding task set.
const TutorialTaskCount = 6

type TutorialProgress struct {
	TotalTasks           int  `json:"totalTasks"`
	ExistingTasks        int  `json:"existingTasks"`
	CompletedTasks       int  `json:"completedTasks"`
	HasActiveTutorial    bool `json:"hasActiveTutorial"`
	CompletionPercentage int  `json:"completionPercentage"`
}

type TaskStats struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"byStatus"`
	RecentTasks    int            `json:"recentTasks"`
	CompletionRate int            `json:"completionRate"`
}

// Percent returns round(part/whole*100), or 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
