package cli

import (
	"net/url"
)

// validateRootFlags validates the flags of the root command.
func validateRootFlags() string {
	if rootBaseURL != "" {
		if _, err := url.Parse(rootBaseURL); err != nil {
			return "Invalid Base URL: " + err.Error()
		}
	}

	// Model is required.
	if rootModel == "" {
		return "Model is required."
	}

	return ""
}

// validateChatFlags validates the flags of the chat command.
func validateChatFlags() string {
	// Chat uses the root flags only.
	return validateRootFlags()
}

// validateBenchFlags validates the flags of the bench command.
func validateBenchFlags() string {
	if message := validateRootFlags(); message != "" {
		return message
	}

	if benchPrompt == "" {
		return "A prompt is required."
	}
	if benchRequestCount <= 0 {
		return "Request count must be greater than 0."
	}
	if benchConcurrency <= 0 {
		return "Concurrency must be greater than 0."
	}

	return ""
}
