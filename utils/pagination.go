package utils

import (
	"github.com/bwmarrin/discordgo"
)

// CreatePaginationComponents creates previous/next buttons. customID builds
// the button ID that opens the given page.
func CreatePaginationComponents(currentPage, totalPages int, customID func(page int) string) []discordgo.MessageComponent {
	if totalPages <= 1 {
		return nil
	}

	prev := currentPage - 1
	if prev < 1 {
		prev = 1
	}
	next := currentPage + 1
	if next > totalPages {
		next = totalPages
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Previous",
					Style:    discordgo.PrimaryButton,
					Disabled: currentPage <= 1,
					CustomID: customID(prev) + ":prev",
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.PrimaryButton,
					Disabled: currentPage >= totalPages,
					CustomID: customID(next) + ":next",
				},
			},
		},
	}
}
