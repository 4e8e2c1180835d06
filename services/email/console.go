// Package email provides EmailService implementations.
package email

import (
	"fmt"
	"os"

	"github.com/studyhubapp/studyhub/core"
)

// consoleService writes messages to stderr. It is the default backend in
// development when no Sendgrid key is configured.
type consoleService struct{}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService() core.EmailService { return &consoleService{} }

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			fmt.Fprintf(os.Stderr, "email: rendering message: %v\n", err)
			continue
		}
		fmt.Fprintf(
			os.Stderr,
			"--- EMAIL ---\nTo: %v\nSubject: %s\n\n%s\n-------------\n",
			msg.To, msg.Subject, msg.TextContent,
		)
	}
}
