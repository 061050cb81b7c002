package plugin

import (
	"time"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// Time plugin intents.
const (
	CheckTime intent.Intent = "CHECK_TIME"
	CheckDate intent.Intent = "CHECK_DATE"
)

// TimePlugin tells the current date and time.
type TimePlugin struct {
	now func() time.Time
}

// NewTimePlugin creates the built-in time plugin.
func NewTimePlugin() *TimePlugin {
	return &TimePlugin{now: time.Now}
}

func (p *TimePlugin) Name() string        { return "TimePlugin" }
func (p *TimePlugin) Description() string { return "Tells the current date and time." }

func (p *TimePlugin) Intents() []intent.Intent {
	return []intent.Intent{CheckTime, CheckDate}
}

func (p *TimePlugin) Phrases() intent.Table {
	return intent.Table{
		{Intent: CheckTime, Phrases: []string{"what time", "current time", "time now"}},
		{Intent: CheckDate, Phrases: []string{"what date", "today's date", "current date", "what day"}},
	}
}

func (p *TimePlugin) Execute(in intent.Intent, _ intent.EntitySet, _ command.Dialect) (string, error) {
	now := p.now()
	switch in {
	case CheckTime:
		return Final("The current time is " + now.Format("15:04:05") + "."), nil
	case CheckDate:
		return Final("Today's date is " + now.Format("2006-01-02") + "."), nil
	}
	return Final("Unknown intent for TimePlugin."), nil
}
