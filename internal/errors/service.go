// internal/errors/service.go - CLI error presentation
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/valpere/hscicharvest/internal/config"
	"github.com/valpere/hscicharvest/internal/output"
)

// Exit codes
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitConfig      = 2
	ExitOutput      = 5
	ExitInterrupted = 130
)

// Service converts errors returned by a run into CLI messages and exit codes.
type Service struct {
	messageHandler *MessageHandler
}

// MessageHandler converts technical errors to user-friendly messages
type MessageHandler struct {
	showTechnical bool
}

// NewService creates a new error service
func NewService() *Service {
	return &Service{
		messageHandler: &MessageHandler{showTechnical: false},
	}
}

// WithVerbose enables technical error details
func (s *Service) WithVerbose(verbose bool) *Service {
	s.messageHandler.showTechnical = verbose
	return s
}

// GetUserFriendlyError converts technical errors to user-friendly messages
func (s *Service) GetUserFriendlyError(err error) (title, message string, suggestions []string) {
	if err == nil {
		return "", "", nil
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		return "Interrupted",
			"The harvest was stopped before it finished. Cached pages are kept.",
			[]string{
				"Run the same command again to resume from the cache",
			}

	case stderrors.Is(err, config.ErrInvalid):
		return "Invalid Configuration",
			"The configuration has values that cannot be used.",
			[]string{
				"Run 'harvester validate --config <file>' to list every problem",
				"Run 'harvester template' to see a complete example",
			}

	case strings.Contains(strings.ToLower(err.Error()), "yaml"):
		return "Configuration Error",
			"The configuration file has invalid YAML syntax.",
			[]string{
				"Check YAML indentation (use spaces, not tabs)",
				"Ensure proper quoting of string values",
			}

	case stderrors.Is(err, output.ErrWrite):
		return "Output Error",
			"The results could not be written.",
			[]string{
				"Check that the output directory is writable",
				"Check free disk space",
			}
	}

	return "Unexpected Error",
		"An unexpected error occurred during the operation.",
		[]string{
			"Try running the command again",
			"Run with --verbose for technical details",
		}
}

// GetExitCode returns appropriate exit code for error
func (s *Service) GetExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	case stderrors.Is(err, config.ErrInvalid):
		return ExitConfig
	case strings.Contains(strings.ToLower(err.Error()), "configuration"):
		return ExitConfig
	case stderrors.Is(err, output.ErrWrite):
		return ExitOutput
	default:
		return ExitGeneral
	}
}

// FormatErrorForCLI formats error for command-line display
func (s *Service) FormatErrorForCLI(err error) string {
	if err == nil {
		return ""
	}
	title, message, suggestions := s.GetUserFriendlyError(err)

	out := fmt.Sprintf("Error: %s\n%s\n", title, message)

	if s.messageHandler.showTechnical {
		out += fmt.Sprintf("\nTechnical details: %s\n", err.Error())
	}

	if len(suggestions) > 0 {
		out += "\nSuggestions:\n"
		for _, suggestion := range suggestions {
			out += fmt.Sprintf("  - %s\n", suggestion)
		}
	}

	return out
}
