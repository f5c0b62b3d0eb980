package api

import (
	"strings"

	"golang.org/x/text/language"

	"rest-planner/domain"
)

type payloadRule struct {
	key     string
	invalid func(domain.NewTaskPayload) bool
}

var newTaskRules = []payloadRule{
	{key: msgDetailsNotSet, invalid: func(p domain.NewTaskPayload) bool {
		return strings.TrimSpace(p.DetailsValue()) == ""
	}},
}

// validateNewTask returns the localized message of every violated rule, in
// rule order. An empty result means the payload is valid.
func validateNewTask(p domain.NewTaskPayload, messages MessageSource, locale language.Tag) []string {
	var errs []string
	for _, r := range newTaskRules {
		if r.invalid(p) {
			errs = append(errs, messages.Message(r.key, nil, locale))
		}
	}
	return errs
}
