package commands

import (
	"plotbot/pkg/utils"
)

// Sources a plot request can arrive from.
const (
	SourceLINE = "line"
	SourceCLI  = "cli"
	SourceAPI  = "api"
)

// MaxCommandLength bounds the message text the handler will try to parse.
// Longer text is answered as a malformed command.
const MaxCommandLength = 256

// PlotGraphCommand asks the service to plot the function described by Text
// and reply through ReplyToken.
type PlotGraphCommand struct {
	// EventID identifies the webhook delivery; empty disables deduplication.
	EventID    string `json:"event_id"`
	ReplyToken string `json:"reply_token" validate:"required"`
	Text       string `json:"text"`
	Source     string `json:"source" validate:"oneof=line cli api"`
}

// Validate validates the command
func (cmd PlotGraphCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}
