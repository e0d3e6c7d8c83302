package handlers

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"modix/model"
	"modix/utils"
)

// options indexes the leaf options of a command or of its subcommand.
type options struct {
	sub    string
	values map[string]*discordgo.ApplicationCommandInteractionDataOption
}

func parseOptions(data discordgo.ApplicationCommandInteractionData) options {
	opts := data.Options
	o := options{}
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		o.sub = opts[0].Name
		opts = opts[0].Options
	}
	o.values = make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		o.values[opt.Name] = opt
	}
	return o
}

func (o options) has(name string) bool {
	_, ok := o.values[name]
	return ok
}

func (o options) string(name string) string {
	if opt, ok := o.values[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) int(name string) int64 {
	if opt, ok := o.values[name]; ok {
		return opt.IntValue()
	}
	return 0
}

func (o options) bool(name string) (bool, bool) {
	if opt, ok := o.values[name]; ok {
		return opt.BoolValue(), true
	}
	return false, false
}

// id reads a user, role or channel option as its snowflake.
func (o options) id(name string) string {
	opt, ok := o.values[name]
	if !ok {
		return ""
	}
	if s, ok := opt.Value.(string); ok {
		return s
	}
	return ""
}

// duration parses an optional duration option. A missing option is nil.
func (o options) duration(name string) (*time.Duration, error) {
	raw := o.string(name)
	if raw == "" {
		return nil, nil
	}
	d, err := utils.ParseDuration(raw)
	if err != nil {
		return nil, model.NewValidationError(name, err.Error())
	}
	return &d, nil
}
