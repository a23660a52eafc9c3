package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlotGraphCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     PlotGraphCommand
		wantErr string
	}{
		{
			name: "valid",
			cmd:  PlotGraphCommand{EventID: "e1", ReplyToken: "tok", Text: "[0:1]\nsin(x)", Source: SourceLINE},
		},
		{
			name: "event id optional",
			cmd:  PlotGraphCommand{ReplyToken: "tok", Text: "x", Source: SourceCLI},
		},
		{
			name:    "missing reply token",
			cmd:     PlotGraphCommand{Text: "x", Source: SourceLINE},
			wantErr: "replytoken is required",
		},
		{
			name: "empty text is left to the handler",
			cmd:  PlotGraphCommand{ReplyToken: "tok", Source: SourceLINE},
		},
		{
			name: "long text is left to the handler",
			cmd:  PlotGraphCommand{ReplyToken: "tok", Text: strings.Repeat("a", MaxCommandLength+1), Source: SourceLINE},
		},
		{
			name:    "unknown source",
			cmd:     PlotGraphCommand{ReplyToken: "tok", Text: "x", Source: "slack"},
			wantErr: "source must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
