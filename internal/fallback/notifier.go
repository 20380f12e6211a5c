package fallback

import (
	"context"
	"log/slog"
)

// LogNotifier writes notices to the log. Used when no UI shell is attached.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Show logs the notice and answers with its first button.
func (n *LogNotifier) Show(_ context.Context, notice Notice) Choice {
	n.logger.Warn("user notice",
		slog.String("title", notice.Title),
		slog.String("body", notice.Body),
		slog.String("severity", notice.Severity.String()),
	)
	return firstChoice(notice)
}

// Fanout shows a notice on several notifiers and returns the first answer.
type Fanout []Notifier

// Show implements Notifier.
func (f Fanout) Show(ctx context.Context, notice Notice) Choice {
	var choice Choice
	for i, n := range f {
		c := n.Show(ctx, notice)
		if i == 0 {
			choice = c
		}
	}
	if choice == "" {
		choice = firstChoice(notice)
	}
	return choice
}

func firstChoice(n Notice) Choice {
	if len(n.Buttons) == 0 {
		return ChoiceOK
	}
	return n.Buttons[0]
}
