package ui

import (
	"github.com/AlecAivazis/survey/v2"
)

// Confirm asks a yes/no question
func Confirm(message string, defaultValue bool) (bool, error) {
	answer := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}

	err := survey.AskOne(prompt, &answer)
	return answer, err
}

// Password displays a password input prompt
func Password(message, help string) (string, error) {
	var result string
	prompt := &survey.Password{
		Message: message,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result, survey.WithValidator(survey.Required))
	return result, err
}
