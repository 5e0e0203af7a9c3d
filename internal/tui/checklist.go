package tui

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/foundry/internal/wizard"
)

// RenderChecklist draws every wizard stage with its state. Stages after the
// last verdict were not reached and are shown as waiting.
func RenderChecklist(verdicts []wizard.Verdict) string {
	byStage := make(map[wizard.Stage]wizard.Verdict, len(verdicts))
	for _, v := range verdicts {
		byStage[v.Stage] = v
	}

	var b strings.Builder
	b.WriteString(styleChecklistTitle.Render("foundry"))
	b.WriteString("\n")
	for i, s := range wizard.Stages {
		label := fmt.Sprintf("%d. %s", i+1, s)
		v, reached := byStage[s]
		switch {
		case !reached:
			b.WriteString(styleStageWaiting.Render(iconWaiting + " " + label))
		case v.Ready:
			b.WriteString(styleStageReady.Render(iconReady + " " + label))
		case v.Severity == wizard.SeverityError:
			b.WriteString(styleStageError.Render(iconError + " " + label))
		default:
			b.WriteString(styleStagePending.Render(iconPending + " " + label))
		}
		b.WriteString("\n")
		if reached && !v.Ready && v.Reason != "" {
			b.WriteString(styleStageReason.Render(v.Reason))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// AllReady reports whether verdicts cover every stage and all passed.
func AllReady(verdicts []wizard.Verdict) bool {
	if len(verdicts) != len(wizard.Stages) {
		return false
	}
	for _, v := range verdicts {
		if !v.Ready {
			return false
		}
	}
	return true
}
