package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"modix/model"
	"modix/moderation"
	"modix/utils"
)

const (
	searchPagePrefix = "infractions_page"
	defaultPageSize  = 10
)

func (h *handler) handleInfraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := parseOptions(i.ApplicationCommandData())
	switch opts.sub {
	case "search":
		h.searchInfractions(ctx, s, i, opts)
	case "show":
		h.showInfraction(ctx, s, i, opts)
	case "rescind":
		h.rescindInfraction(ctx, s, i, opts)
	case "update":
		h.updateInfraction(ctx, s, i, opts)
	case "restore":
		h.restoreInfraction(ctx, s, i, opts)
	case "delete":
		h.deleteInfraction(ctx, s, i, opts)
	}
}

// searchQuery is the part of a search carried between result pages.
type searchQuery struct {
	Page           int
	Size           int
	SubjectID      string
	ModeratorID    string
	Type           model.InfractionType
	ActiveOnly     bool
	IncludeDeleted bool
}

func (q searchQuery) criteria(guildID string, now time.Time) model.InfractionSearchCriteria {
	c := model.InfractionSearchCriteria{
		GuildID:     guildID,
		SubjectID:   q.SubjectID,
		CreatedByID: q.ModeratorID,
		Limit:       q.Size + 1,
		Offset:      (q.Page - 1) * q.Size,
	}
	if q.Type != "" {
		c.Types = []model.InfractionType{q.Type}
	}
	if q.ActiveOnly {
		c.ActiveAt = &now
	}
	if !q.IncludeDeleted {
		deleted := false
		c.IsDeleted = &deleted
	}
	return c
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// customID encodes q for a pagination button of the given page.
func (q searchQuery) customID(page int) string {
	return strings.Join([]string{
		searchPagePrefix,
		strconv.Itoa(page),
		strconv.Itoa(q.Size),
		q.SubjectID,
		q.ModeratorID,
		string(q.Type),
		flag(q.ActiveOnly) + flag(q.IncludeDeleted),
	}, ":")
}

func parseSearchCustomID(customID string) (searchQuery, error) {
	parts := strings.Split(customID, ":")
	// Buttons append their direction so both IDs stay unique.
	if len(parts) == 8 {
		parts = parts[:7]
	}
	if len(parts) != 7 || parts[0] != searchPagePrefix || len(parts[6]) != 2 {
		return searchQuery{}, fmt.Errorf("malformed search page id %q", customID)
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 1 {
		return searchQuery{}, fmt.Errorf("malformed search page %q", parts[1])
	}
	size, err := strconv.Atoi(parts[2])
	if err != nil || size < 1 {
		return searchQuery{}, fmt.Errorf("malformed search page size %q", parts[2])
	}
	return searchQuery{
		Page:           page,
		Size:           size,
		SubjectID:      parts[3],
		ModeratorID:    parts[4],
		Type:           model.InfractionType(parts[5]),
		ActiveOnly:     parts[6][0] == '1',
		IncludeDeleted: parts[6][1] == '1',
	}, nil
}

func (h *handler) searchInfractions(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimModerationRead) {
		return
	}
	q := searchQuery{
		Page:        1,
		Size:        defaultPageSize,
		SubjectID:   opts.id("user"),
		ModeratorID: opts.id("moderator"),
		Type:        model.InfractionType(opts.string("type")),
	}
	if opts.has("limit") {
		q.Size = int(opts.int("limit"))
	}
	q.ActiveOnly, _ = opts.bool("active")
	q.IncludeDeleted, _ = opts.bool("include_deleted")

	if !h.deferReply(s, i, true) {
		return
	}
	embed, components, err := h.searchPage(ctx, i.GuildID, q)
	if err != nil {
		h.fail(s, i, "search infractions", err)
		return
	}
	h.editWithComponents(s, i, embed, components)
}

func (h *handler) handleSearchPage(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	if !h.authorize(ctx, s, i, model.ClaimModerationRead) {
		return
	}
	q, err := parseSearchCustomID(customID)
	if err != nil {
		utils.SendErrorResponse(s, i, "This result page is no longer valid.")
		return
	}
	embed, components, err := h.searchPage(ctx, i.GuildID, q)
	if err != nil {
		msg, _ := userMessage(err)
		utils.SendErrorResponse(s, i, msg)
		return
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		h.log.Warn("failed to update search page", zap.Error(err))
	}
}

// searchPage fetches one page plus one extra row to learn whether a next
// page exists.
func (h *handler) searchPage(ctx context.Context, guildID string, q searchQuery) (*discordgo.MessageEmbed, []discordgo.MessageComponent, error) {
	now := time.Now()
	found, err := h.bot.Moderation.SearchInfractions(ctx, q.criteria(guildID, now), moderation.DefaultSort...)
	if err != nil {
		return nil, nil, err
	}
	hasNext := len(found) > q.Size
	if hasNext {
		found = found[:q.Size]
	}

	var b strings.Builder
	for _, inf := range found {
		b.WriteString(infractionLine(inf, now))
		b.WriteString("\n")
	}
	if len(found) == 0 {
		b.WriteString("No infractions found.")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Infractions",
		Description: b.String(),
		Color:       0x5865F2,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d", q.Page)},
	}

	totalPages := q.Page
	if hasNext {
		totalPages++
	}
	var components []discordgo.MessageComponent
	if totalPages > 1 {
		components = utils.CreatePaginationComponents(q.Page, totalPages, q.customID)
	}
	return embed, components, nil
}

func (h *handler) editWithComponents(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		h.log.Warn("failed to send search results", zap.Error(err))
	}
}

func (h *handler) showInfraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimModerationRead) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	inf, err := h.bot.Moderation.GetInfraction(ctx, i.GuildID, opts.int("id"))
	if err != nil {
		h.fail(s, i, "get infraction", err)
		return
	}
	utils.SendFollowUpEmbeds(s, i.Interaction, infractionEmbed(inf, time.Now()))
}

func (h *handler) rescindInfraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimModerationRescind) {
		return
	}
	if !h.deferReply(s, i, false) {
		return
	}
	res, err := h.bot.Moderation.RescindInfractionByID(ctx, opts.int("id"), actorOf(i), opts.string("reason"))
	if err != nil {
		h.fail(s, i, "rescind infraction", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, resultMessage("Rescinded", res))
}

func (h *handler) updateInfraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimModerationUpdateInfraction) {
		return
	}
	var in moderation.UpdateInfractionInput
	if opts.has("reason") {
		reason := opts.string("reason")
		in.Reason = &reason
	}
	duration, err := opts.duration("duration")
	if err != nil {
		msg, _ := userMessage(err)
		utils.SendErrorResponse(s, i, msg)
		return
	}
	in.Duration = duration
	in.ClearDuration, _ = opts.bool("permanent")

	if !h.deferReply(s, i, true) {
		return
	}
	id := opts.int("id")
	if err := h.bot.Moderation.UpdateInfraction(ctx, id, in, actorOf(i)); err != nil {
		h.fail(s, i, "update infraction", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Updated infraction #%d.", id))
}

func (h *handler) restoreInfraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimModerationRescind) {
		return
	}
	if !h.deferReply(s, i, false) {
		return
	}
	res, err := h.bot.Moderation.RestoreInfraction(ctx, opts.int("id"), actorOf(i))
	if err != nil {
		h.fail(s, i, "restore infraction", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, resultMessage("Restored", res))
}

func (h *handler) deleteInfraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimModerationDeleteInfraction) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	id := opts.int("id")
	if err := h.bot.Moderation.DeleteInfraction(ctx, id, actorOf(i)); err != nil {
		h.fail(s, i, "delete infraction", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("🗑️ Deleted infraction #%d.", id))
}
