package query

import "strings"

// Intent is the coarse topic of a question.
type Intent string

const (
	IntentWork      Intent = "work"
	IntentProjects  Intent = "projects"
	IntentSkills    Intent = "skills"
	IntentEducation Intent = "education"
	IntentContact   Intent = "contact"
	IntentGeneral   Intent = "general"
)

var intentRules = []struct {
	intent Intent
	words  []string
}{
	{IntentWork, []string{"company", "employer", "work", "job", "role", "position"}},
	{IntentProjects, []string{"project", "best", "achievement", "accomplishment", "developed", "built"}},
	{IntentSkills, []string{"skill", "technology", "expertise", "know", "experience"}},
	{IntentEducation, []string{"education", "study", "degree", "university", "college"}},
	{IntentContact, []string{"contact", "email", "phone", "reach", "location"}},
}

// ClassifyIntent returns the first intent whose words occur in query,
// checking work, projects, skills, education and contact in that order.
func ClassifyIntent(query string) Intent {
	lower := strings.ToLower(query)
	for _, rule := range intentRules {
		if containsAny(lower, rule.words) {
			return rule.intent
		}
	}
	return IntentGeneral
}
